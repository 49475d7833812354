package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Feed setting key suffixes. The full key is "feed_<source>_<suffix>",
// see FeedSettingKey.
const (
	SettingSuffixEnabled     = "enabled"
	SettingSuffixURL         = "url"
	SettingSuffixSchedule    = "schedule"
	SettingSuffixLastRunAt   = "last_run_at"
	SettingSuffixLastStatus  = "last_status"
	SettingSuffixLastSummary = "last_summary"
)

// FeedSettingKey builds the settings key for a feed source.
func FeedSettingKey(source, suffix string) string {
	return "feed_" + source + "_" + suffix
}
