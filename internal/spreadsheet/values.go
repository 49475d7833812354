package spreadsheet

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
)

const (
	secondsPerDay  = 24 * 60 * 60
	endOfDayOffset = 23*time.Hour + 59*time.Minute + 59*time.Second
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"02/01/2006",
}

var clockRe = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?(?:[:.](\d{2}))?\s*(?:uhr|h)?$`)

// parseDate reads a date cell: a serial number, an ISO or German date, or
// anything dateparse understands. The clock part is returned separately and
// is nil when the cell carries none.
func parseDate(raw string) (time.Time, *time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil, false
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial < 1 {
			return time.Time{}, nil, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, nil, false
		}
		return splitClock(t)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return splitClock(t)
		}
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, nil, false
	}
	return splitClock(t)
}

func splitClock(t time.Time) (time.Time, *time.Duration, bool) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	clock := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
	if clock == 0 {
		return day, nil, true
	}
	return day, &clock, true
}

// parseClock reads a time-of-day cell: a day fraction, a serial date-time,
// or text such as "10:30", "10.30" and "10 Uhr".
func parseClock(raw string) (*time.Duration, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return nil, false
	}

	if !strings.Contains(raw, ":") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			// A day fraction, or a serial date-time whose fraction is the clock.
			if (f >= 0 && f < 1) || f >= 24 {
				_, frac := math.Modf(f)
				seconds := int(math.Round(frac * secondsPerDay))
				if seconds >= secondsPerDay {
					seconds = secondsPerDay - 1
				}
				d := time.Duration(seconds) * time.Second
				return &d, true
			}
		}
	}

	m := clockRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, seconds := 0, 0
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		seconds, _ = strconv.Atoi(m[3])
	}
	if hours > 23 || minutes > 59 || seconds > 59 {
		return nil, false
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	return &d, true
}

// combine joins a day with an explicit clock, the clock carried by the
// date cell, or the fallback, in that order.
func combine(day time.Time, explicit, carried *time.Duration, fallback time.Duration) time.Time {
	switch {
	case explicit != nil:
		return day.Add(*explicit)
	case carried != nil:
		return day.Add(*carried)
	default:
		return day.Add(fallback)
	}
}

// parsePublic reads the public/closed flag. Unknown values are public.
func parsePublic(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "closed", "geschlossen", "intern", "internal", "no", "nein", "0", "false", "private":
		return false
	default:
		return true
	}
}

var (
	urlRe   = regexp.MustCompile(`https?://[^\s,;]+`)
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

func firstURL(raw string) string {
	if m := urlRe.FindString(raw); m != "" {
		return m
	}
	return strings.TrimSpace(raw)
}

func firstEmail(raw string) string {
	if m := emailRe.FindString(raw); m != "" {
		return m
	}
	return strings.TrimSpace(raw)
}

// joinValues merges comma separated cells, dropping blanks and repeats.
func joinValues(cells ...string) string {
	var out []string
	seen := make(map[string]bool)
	for _, cell := range cells {
		for _, part := range strings.Split(cell, ",") {
			part = strings.TrimSpace(part)
			key := strings.ToLower(part)
			if part == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, part)
		}
	}
	return strings.Join(out, ", ")
}
