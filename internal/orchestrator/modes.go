package orchestrator

import (
	"fmt"
	"strings"
)

// Mode selects how a run reconciles feed records with stored entries.
type Mode string

const (
	// ModeImport inserts new entries and updates those matched by identifier.
	ModeImport Mode = "import"
	// ModeDryRun makes the same decisions as ModeImport without writing.
	ModeDryRun Mode = "dry-run"
	// ModePopulateMissing fills only the empty fields of stored entries.
	ModePopulateMissing Mode = "populate-missing"
	// ModeUpdateMatching updates non-key fields of title+date matches.
	ModeUpdateMatching Mode = "update-matching"
	// ModeUpdateAllMatching rewrites every field of title+date matches and
	// replaces their cover image.
	ModeUpdateAllMatching Mode = "update-all-matching"
)

// Modes lists every run mode.
var Modes = []Mode{ModeImport, ModeDryRun, ModePopulateMissing, ModeUpdateMatching, ModeUpdateAllMatching}

// ParseMode returns the mode named s. An empty string is ModeImport.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeImport, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown import mode %q", s)
}

// Writes reports whether the mode persists anything.
func (m Mode) Writes() bool {
	return m != ModeDryRun
}
