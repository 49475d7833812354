package importers

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/mrlokans/eventsync/internal/entities"
)

// layouts are tried in order before falling back to dateparse.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
}

// TimeParser parses feed timestamps into wall-clock values in the import
// timezone. Values without an offset are read in Naive; values with an
// offset keep it. Either way the result is converted to Local.
type TimeParser struct {
	Local *time.Location
	Naive *time.Location
}

// NewTimeParser returns a parser that reads zone-less values as local time.
func NewTimeParser(local *time.Location) TimeParser {
	if local == nil {
		local = time.UTC
	}
	return TimeParser{Local: local, Naive: local}
}

// WithNaive returns a copy that reads zone-less values in loc.
func (p TimeParser) WithNaive(loc *time.Location) TimeParser {
	if loc != nil {
		p.Naive = loc
	}
	return p
}

// Parse returns the wall-clock time for s. The second result is false when
// s is empty or not a recognisable date.
func (p TimeParser) Parse(s string) (time.Time, bool) {
	return p.parseIn(s, p.naive())
}

// ParseInZone is Parse with a per-value zone name for zone-less input. An
// unknown zone name falls back to Naive.
func (p TimeParser) ParseInZone(s, zone string) (time.Time, bool) {
	naive := p.naive()
	if zone = strings.TrimSpace(zone); zone != "" {
		if loc, err := time.LoadLocation(zone); err == nil {
			naive = loc
		}
	}
	return p.parseIn(s, naive)
}

func (p TimeParser) parseIn(s string, naive *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, naive); err == nil {
			return p.toLocal(t), true
		}
	}

	t, err := dateparse.ParseIn(s, naive)
	if err != nil {
		return time.Time{}, false
	}
	return p.toLocal(t), true
}

func (p TimeParser) toLocal(t time.Time) time.Time {
	local := p.Local
	if local == nil {
		local = time.UTC
	}
	return entities.WallClock(t.In(local))
}

func (p TimeParser) naive() *time.Location {
	if p.Naive != nil {
		return p.Naive
	}
	if p.Local != nil {
		return p.Local
	}
	return time.UTC
}
