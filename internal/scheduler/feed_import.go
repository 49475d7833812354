// Package scheduler enqueues feed imports on their cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/eventsync/internal/orchestrator"
	"github.com/mrlokans/eventsync/internal/settingsstore"
	"github.com/mrlokans/eventsync/internal/tasks"
)

// FeedConfigs resolves per-feed settings.
type FeedConfigs interface {
	GetFeedConfig(source string) settingsstore.FeedConfig
}

// Enqueuer hands import tasks to the single-worker queue.
type Enqueuer interface {
	EnqueueImport(task tasks.ImportFeedTask) (string, error)
}

// FeedImportScheduler enqueues an import for every enabled feed on the
// feed's cron schedule. Runs themselves happen on the task queue, so two
// imports never overlap.
type FeedImportScheduler struct {
	settings FeedConfigs
	queue    Enqueuer
	sources  []string

	cron      *cron.Cron
	entries   map[string]cron.EntryID
	mu        sync.RWMutex
	isRunning bool

	// The first Start's ctx bounds the scheduler's lifetime; Reschedule
	// reuses the same watcher.
	watchOnce sync.Once
	watchers  int
}

// NewFeedImportScheduler creates a scheduler for the given feed sources.
func NewFeedImportScheduler(settings FeedConfigs, queue Enqueuer, sources []string) *FeedImportScheduler {
	return &FeedImportScheduler{
		settings: settings,
		queue:    queue,
		sources:  sources,
		entries:  make(map[string]cron.EntryID),
		cron:     newCron(),
	}
}

func newCron() *cron.Cron {
	return cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
}

// Start schedules every enabled feed and starts the cron loop. Feeds
// without a URL are skipped with a warning.
func (s *FeedImportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	for _, source := range s.sources {
		cfg := s.settings.GetFeedConfig(source)
		if !cfg.Enabled {
			slog.Info("feed import scheduler: feed disabled", "feed", source)
			continue
		}
		if cfg.URL == "" {
			slog.Warn("feed import scheduler: feed URL not configured, skipping", "feed", source)
			continue
		}
		if err := settingsstore.ValidateCronSchedule(cfg.Schedule); err != nil {
			s.reset()
			return fmt.Errorf("invalid cron schedule '%s' for feed %s: %w", cfg.Schedule, source, err)
		}

		entryID, err := s.cron.AddFunc(cfg.Schedule, func() {
			s.enqueue(source)
		})
		if err != nil {
			s.reset()
			return fmt.Errorf("failed to schedule %s import: %w", source, err)
		}
		s.entries[source] = entryID

		nextRun, _ := settingsstore.GetNextRunTime(cfg.Schedule)
		slog.Info("feed import scheduler: scheduled",
			"feed", source,
			"schedule", cfg.Schedule,
			"description", settingsstore.GetCronDescription(cfg.Schedule),
			"next_run", nextRun,
		)
	}

	s.cron.Start()
	s.isRunning = true

	s.watchOnce.Do(func() {
		s.watchers++
		go func() {
			<-ctx.Done()
			s.Stop()
		}()
	})

	return nil
}

// reset drops entries added by a Start that did not complete.
func (s *FeedImportScheduler) reset() {
	s.entries = make(map[string]cron.EntryID)
	s.cron = newCron()
}

// Stop stops the cron loop. Enqueued imports keep running on the queue.
func (s *FeedImportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()

	s.isRunning = false
	s.reset()

	slog.Info("feed import scheduler: stopped")
}

// Reschedule reloads feed settings; call it after a settings change.
func (s *FeedImportScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// RunNow enqueues an import of source immediately.
func (s *FeedImportScheduler) RunNow(source string, mode orchestrator.Mode) (string, error) {
	return s.queue.EnqueueImport(tasks.ImportFeedTask{Source: source, Mode: mode})
}

// IsRunning returns whether the scheduler is active.
func (s *FeedImportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when source is next imported, or nil if it is not
// scheduled.
func (s *FeedImportScheduler) NextRun(source string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.entries[source]
	if !ok {
		return nil
	}
	next := s.cron.Entry(id).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

func (s *FeedImportScheduler) enqueue(source string) {
	id, err := s.queue.EnqueueImport(tasks.ImportFeedTask{Source: source, Mode: orchestrator.ModeImport})
	if err != nil {
		slog.Error("feed import scheduler: enqueue failed", "feed", source, "error", err)
		return
	}
	slog.Info("feed import scheduler: import enqueued", "feed", source, "task_id", id)
}
