package spreadsheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	noon := 12 * time.Hour
	tests := []struct {
		input string
		day   time.Time
		clock *time.Duration
		ok    bool
	}{
		{"2024-07-10", time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), nil, true},
		{"10.07.2024", time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), nil, true},
		{"45483", time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), nil, true},
		{"45483.5", time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), &noon, true},
		{"2024-07-10 12:00:00", time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), &noon, true},
		{"July 10, 2024", time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), nil, true},
		{"", time.Time{}, nil, false},
		{"0.5", time.Time{}, nil, false},
		{"not a date", time.Time{}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			day, clock, ok := parseDate(tt.input)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.day, day)
			assert.Equal(t, tt.clock, clock)
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := map[string]time.Duration{
		"10:30":    10*time.Hour + 30*time.Minute,
		"10.30":    10*time.Hour + 30*time.Minute,
		"9":        9 * time.Hour,
		"14 Uhr":   14 * time.Hour,
		"18:00:15": 18*time.Hour + 15*time.Second,
		"0.75":     18 * time.Hour,
		"45483.25": 6 * time.Hour,
	}
	for input, want := range tests {
		got, ok := parseClock(input)
		require.True(t, ok, input)
		assert.Equal(t, want, *got, input)
	}

	for _, bad := range []string{"", "25:00", "noon", "10:75"} {
		_, ok := parseClock(bad)
		assert.False(t, ok, bad)
	}
}

func TestMapHeader(t *testing.T) {
	columns := mapHeader([]string{" Title: ", "DATUM", "Zielgruppe", "Zielgruppe", "zielgruppe", "zielgruppe", "Unknown", "title"})

	assert.Equal(t, 0, columns[FieldTitle], "first title column wins")
	assert.Equal(t, 1, columns[FieldDate])
	assert.Equal(t, 2, columns[FieldTarget1])
	assert.Equal(t, 3, columns[FieldTarget2])
	assert.Equal(t, 4, columns[FieldTarget3])
	assert.Len(t, columns, 5)
}

func TestJoinValues(t *testing.T) {
	assert.Equal(t, "Teachers, students", joinValues("Teachers", " students , ", "Students, teachers"))
	assert.Equal(t, "", joinValues("", " "))
}

func TestParsePublic(t *testing.T) {
	assert.True(t, parsePublic(""))
	assert.True(t, parsePublic("public"))
	assert.False(t, parsePublic("Closed"))
	assert.False(t, parsePublic("nein"))
}
