// Package settingsstore resolves runtime settings with the priority
// database > environment > default.
package settingsstore

import (
	"os"
	"strings"

	"github.com/mrlokans/eventsync/internal/entities"
)

// Origins reported for a resolved value.
const (
	OriginDatabase    = "database"
	OriginEnvironment = "environment"
	OriginDefault     = "default"
)

// Repository is the persistence the store reads and writes.
type Repository interface {
	GetValue(key string) (string, error)
	SetMany(values map[string]string) error
	DeleteSetting(key string) error
}

// Priority: database > environment > default
type SettingsStore struct {
	repo Repository
}

func New(repo Repository) *SettingsStore {
	return &SettingsStore{repo: repo}
}

// resolve looks up a feed setting. The environment variable name is the
// upper-cased settings key, e.g. FEED_GLOBAL_URL.
func (s *SettingsStore) resolve(source, suffix, fallback string) (string, string) {
	key := entities.FeedSettingKey(source, suffix)

	if value, err := s.repo.GetValue(key); err == nil && value != "" {
		return value, OriginDatabase
	}

	if envVal := os.Getenv(strings.ToUpper(key)); envVal != "" {
		return envVal, OriginEnvironment
	}

	return fallback, OriginDefault
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
