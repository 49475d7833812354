package tasks

import (
	"time"

	"github.com/mrlokans/eventsync/internal/config"
)

// Config holds configuration for the task queue.
type Config struct {
	// Workers is fixed at 1: feed imports assume a single writer.
	Workers int

	// TaskTimeout bounds one import run, capped at MaxTaskTimeout. Default: 30m
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to the queue. Default: 45m
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed tasks are purged. Default: 1h
	CleanupInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         1,
		TaskTimeout:     30 * time.Minute,
		ReleaseAfter:    45 * time.Minute,
		CleanupInterval: 1 * time.Hour,
	}
}

// FromConfig builds a Config from process settings, keeping defaults for
// unset durations.
func FromConfig(cfg config.Tasks) Config {
	c := DefaultConfig()
	if cfg.TaskTimeout > 0 {
		c.TaskTimeout = min(cfg.TaskTimeout, MaxTaskTimeout)
	}
	if cfg.ReleaseAfter > 0 {
		c.ReleaseAfter = cfg.ReleaseAfter
	}
	// A running import must never be released to a second worker pass.
	if c.ReleaseAfter <= c.TaskTimeout {
		c.ReleaseAfter = c.TaskTimeout + 15*time.Minute
	}
	if cfg.CleanupInterval > 0 {
		c.CleanupInterval = cfg.CleanupInterval
	}
	return c
}
