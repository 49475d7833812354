package entities

import "time"

// WallClock drops the zone and sub-second part of t, keeping its local
// date and time-of-day as a UTC value. Entry timestamps are stored this way
// so calendar-date comparisons do not depend on the database session zone.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// WallClockPtr applies WallClock to a non-nil pointer.
func WallClockPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	w := WallClock(*t)
	return &w
}

// StartOfDay returns midnight of t's calendar day in wall-clock form.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
