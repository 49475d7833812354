package importers

import (
	"strings"
	"time"
)

// DatePair is one raw (start, end) occurrence taken from a feed record.
// Zone optionally names the location of zone-less values.
type DatePair struct {
	Start string
	End   string
	Zone  string
}

// Grouped is the first record seen for an identifier, together with the
// date range computed over all of that identifier's occurrences.
type Grouped[T any] struct {
	ID            string
	Item          T
	Occurrences   int
	ComputedStart *time.Time
	ComputedEnd   *time.Time

	pairs []DatePair
}

// Groups holds grouped records in first-seen order.
type Groups[T any] struct {
	order []*Grouped[T]
	byID  map[string]*Grouped[T]
}

// All returns the groups in first-seen order.
func (g *Groups[T]) All() []*Grouped[T] {
	return g.order
}

// Get returns the group for id.
func (g *Groups[T]) Get(id string) (*Grouped[T], bool) {
	item, ok := g.byID[strings.TrimSpace(id)]
	return item, ok
}

func (g *Groups[T]) Len() int {
	return len(g.order)
}

// Grouper merges feed records that share an identifier.
type Grouper[T any] struct {
	// ID returns the record's external identifier; "" drops the record.
	ID func(T) string
	// Dates returns every date pair carried by a single record.
	Dates func(T) []DatePair
	// Parser reads the date strings. Unparseable values are ignored.
	Parser TimeParser
}

// Group collects items by identifier. The first occurrence becomes the
// base record. ComputedStart is the earliest parsed start and ComputedEnd
// the latest parsed end over all occurrences.
func (g Grouper[T]) Group(items []T) *Groups[T] {
	groups := &Groups[T]{byID: make(map[string]*Grouped[T])}

	for _, item := range items {
		id := strings.TrimSpace(g.ID(item))
		if id == "" {
			continue
		}

		group, exists := groups.byID[id]
		if !exists {
			group = &Grouped[T]{ID: id, Item: item}
			groups.byID[id] = group
			groups.order = append(groups.order, group)
		}
		group.Occurrences++
		if g.Dates != nil {
			group.pairs = append(group.pairs, g.Dates(item)...)
		}
	}

	for _, group := range groups.order {
		group.ComputedStart, group.ComputedEnd = g.computeRange(group.pairs)
	}

	return groups
}

func (g Grouper[T]) computeRange(pairs []DatePair) (*time.Time, *time.Time) {
	var start, end *time.Time
	for _, p := range pairs {
		if t, ok := g.Parser.ParseInZone(p.Start, p.Zone); ok {
			if start == nil || t.Before(*start) {
				start = &t
			}
		}
		if t, ok := g.Parser.ParseInZone(p.End, p.Zone); ok {
			if end == nil || t.After(*end) {
				end = &t
			}
		}
	}
	return start, end
}

// Pairs returns the raw date pairs collected for the group.
func (g *Grouped[T]) Pairs() []DatePair {
	return g.pairs
}
