package orchestrator

import (
	"fmt"
	"sort"
	"strings"
)

// Populate-missing counters, one per backfilled field.
const (
	CounterImages       = "images_updated"
	CounterCategories   = "categories_attached"
	CounterDescriptions = "descriptions_updated"
	CounterPlaces       = "places_updated"
	CounterURLs         = "urls_updated"
	CounterCountries    = "countries_updated"
	CounterThemes       = "themes_updated"
	CounterTargets      = "targets_updated"
	CounterContacts     = "contacts_updated"
	CounterEmails       = "emails_updated"
	CounterInstitutions = "institutions_updated"
	CounterFormats      = "formats_updated"
)

// Stats are the counters of one run.
type Stats struct {
	Source string `json:"source"`
	Mode   Mode   `json:"mode"`

	Total      int `json:"total"`
	Inserted   int `json:"inserted"`
	Updated    int `json:"updated"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicate"`
	Errors     int `json:"error"`
	NotFound   int `json:"not_found"`

	ImagesAdded        int `json:"images_added"`
	CategoriesAttached int `json:"categories_attached"`
	SideEffectErrors   int `json:"side_effect_errors"`

	// Fields counts backfilled values per field in populate-missing mode.
	Fields map[string]int `json:"fields,omitempty"`

	ItemErrors []*ItemError `json:"-"`
}

func newStats(source string, mode Mode) *Stats {
	return &Stats{Source: source, Mode: mode, Fields: make(map[string]int)}
}

func (s *Stats) record(o outcome) {
	switch o {
	case outcomeInserted:
		s.Inserted++
	case outcomeUpdated:
		s.Updated++
	case outcomeSkipped:
		s.Skipped++
	case outcomeDuplicate:
		s.Duplicates++
	case outcomeNotFound:
		s.NotFound++
	}
}

func (s *Stats) recordError(err *ItemError) {
	s.Errors++
	s.ItemErrors = append(s.ItemErrors, err)
}

// Summary is a one-line human readable form of the counters.
func (s *Stats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: total=%d", s.Source, s.Mode, s.Total)

	switch s.Mode {
	case ModePopulateMissing:
		fmt.Fprintf(&b, " updated=%d skipped=%d not_found=%d", s.Updated, s.Skipped, s.NotFound)
		keys := make([]string, 0, len(s.Fields))
		for k := range s.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%d", k, s.Fields[k])
		}
	case ModeUpdateMatching, ModeUpdateAllMatching:
		fmt.Fprintf(&b, " updated=%d skipped=%d not_found=%d", s.Updated, s.Skipped, s.NotFound)
	default:
		fmt.Fprintf(&b, " inserted=%d updated=%d skipped=%d duplicate=%d", s.Inserted, s.Updated, s.Skipped, s.Duplicates)
	}

	fmt.Fprintf(&b, " error=%d", s.Errors)
	if s.ImagesAdded > 0 || s.CategoriesAttached > 0 {
		fmt.Fprintf(&b, " images_added=%d categories_attached=%d", s.ImagesAdded, s.CategoriesAttached)
	}
	if s.SideEffectErrors > 0 {
		fmt.Fprintf(&b, " side_effect_errors=%d", s.SideEffectErrors)
	}
	return b.String()
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeInserted
	outcomeUpdated
	outcomeDuplicate
	outcomeNotFound
)

func (o outcome) String() string {
	switch o {
	case outcomeInserted:
		return "inserted"
	case outcomeUpdated:
		return "updated"
	case outcomeDuplicate:
		return "duplicate"
	case outcomeNotFound:
		return "not_found"
	default:
		return "skipped"
	}
}
