package settingsstore

import (
	"errors"
	"strconv"
	"time"

	"github.com/mrlokans/eventsync/internal/entities"
)

// Last-run status values
const (
	StatusSuccess  = "success"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// FeedConfig is the effective configuration for one feed source.
type FeedConfig struct {
	Source   string `json:"source"`
	Enabled  bool   `json:"enabled"`
	URL      string `json:"url"`
	Schedule string `json:"schedule"`
}

// FeedConfigInfo includes where each value came from.
type FeedConfigInfo struct {
	FeedConfig
	EnabledSource  string `json:"enabled_source"`
	URLSource      string `json:"url_source"`
	ScheduleSource string `json:"schedule_source"`
}

// FeedStatus describes the last completed run of a feed.
type FeedStatus struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"`
	Summary   string     `json:"summary,omitempty"`
}

var defaultSchedules = map[string]string{
	entities.SourceGlobal: "0 3 * * *",  // Daily at 03:00
	entities.SourceSplit:  "30 3 * * *", // Daily at 03:30
}

// DefaultSchedule returns the built-in cron schedule for a feed.
func DefaultSchedule(source string) string {
	if schedule, ok := defaultSchedules[source]; ok {
		return schedule
	}
	return "0 4 * * *"
}

// GetFeedConfig returns the effective configuration for source.
func (s *SettingsStore) GetFeedConfig(source string) FeedConfig {
	return s.GetFeedConfigInfo(source).FeedConfig
}

// GetFeedConfigInfo returns the configuration with source information.
func (s *SettingsStore) GetFeedConfigInfo(source string) FeedConfigInfo {
	enabled, enabledSource := s.resolve(source, entities.SettingSuffixEnabled, "false")
	url, urlSource := s.resolve(source, entities.SettingSuffixURL, "")
	schedule, scheduleSource := s.resolve(source, entities.SettingSuffixSchedule, DefaultSchedule(source))

	return FeedConfigInfo{
		FeedConfig: FeedConfig{
			Source:   source,
			Enabled:  parseBool(enabled),
			URL:      url,
			Schedule: schedule,
		},
		EnabledSource:  enabledSource,
		URLSource:      urlSource,
		ScheduleSource: scheduleSource,
	}
}

// SetFeedConfig stores all three values in the database.
func (s *SettingsStore) SetFeedConfig(cfg FeedConfig) error {
	if cfg.Schedule != "" {
		if err := ValidateCronSchedule(cfg.Schedule); err != nil {
			return err
		}
	}
	return s.repo.SetMany(map[string]string{
		entities.FeedSettingKey(cfg.Source, entities.SettingSuffixEnabled):  strconv.FormatBool(cfg.Enabled),
		entities.FeedSettingKey(cfg.Source, entities.SettingSuffixURL):      cfg.URL,
		entities.FeedSettingKey(cfg.Source, entities.SettingSuffixSchedule): cfg.Schedule,
	})
}

// ClearFeedConfig removes database overrides, reverting to env/default.
func (s *SettingsStore) ClearFeedConfig(source string) error {
	var errs []error
	for _, suffix := range []string{entities.SettingSuffixEnabled, entities.SettingSuffixURL, entities.SettingSuffixSchedule} {
		if err := s.repo.DeleteSetting(entities.FeedSettingKey(source, suffix)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetFeedStatus returns the last recorded run for source.
func (s *SettingsStore) GetFeedStatus(source string) FeedStatus {
	status := FeedStatus{}

	if value, err := s.repo.GetValue(entities.FeedSettingKey(source, entities.SettingSuffixLastRunAt)); err == nil && value != "" {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			status.LastRunAt = &ts
		}
	}
	if value, err := s.repo.GetValue(entities.FeedSettingKey(source, entities.SettingSuffixLastStatus)); err == nil {
		status.Status = value
	}
	if value, err := s.repo.GetValue(entities.FeedSettingKey(source, entities.SettingSuffixLastSummary)); err == nil {
		status.Summary = value
	}
	return status
}

// SetFeedStatus records the outcome of a run.
func (s *SettingsStore) SetFeedStatus(source, status, summary string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.repo.SetMany(map[string]string{
		entities.FeedSettingKey(source, entities.SettingSuffixLastRunAt):   now,
		entities.FeedSettingKey(source, entities.SettingSuffixLastStatus):  status,
		entities.FeedSettingKey(source, entities.SettingSuffixLastSummary): summary,
	})
}
