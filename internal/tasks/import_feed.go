package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/eventsync/internal/orchestrator"
	"github.com/mrlokans/eventsync/internal/runner"
)

// QueueImportFeed is the backlite queue name for feed imports.
const QueueImportFeed = "import_feed"

// FeedRunner runs one feed import.
type FeedRunner interface {
	Run(ctx context.Context, req runner.Request) (*orchestrator.Stats, error)
}

// ImportFeedTask imports one feed in the given mode.
type ImportFeedTask struct {
	Source string            `json:"source"`
	Mode   orchestrator.Mode `json:"mode"`
	URL    string            `json:"url,omitempty"`
}

// MaxTaskTimeout caps a single import. backlite reads the queue config from a
// zero task, so the configured TaskTimeout is applied by the processor and
// this is only the ceiling.
const MaxTaskTimeout = 2 * time.Hour

// Config returns the queue configuration for feed imports. A failed fetch
// is not retried; the next scheduled run tries again.
func (t ImportFeedTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueImportFeed,
		MaxAttempts: 1,
		Timeout:     MaxTaskTimeout,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportFeedProcessor runs ImportFeedTask through r, bounded by timeout
// when it is positive.
func ImportFeedProcessor(r FeedRunner, timeout time.Duration) backlite.QueueProcessor[ImportFeedTask] {
	return func(ctx context.Context, task ImportFeedTask) error {
		if r == nil {
			return fmt.Errorf("feed runner not configured")
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		stats, err := r.Run(ctx, runner.Request{Source: task.Source, Mode: task.Mode, URL: task.URL})
		if errors.Is(err, runner.ErrFeedDisabled) {
			slog.InfoContext(ctx, "import task skipped, feed disabled", "feed", task.Source)
			return nil
		}
		if err != nil {
			return fmt.Errorf("import %s: %w", task.Source, err)
		}

		slog.InfoContext(ctx, "import task finished", "feed", task.Source, "summary", stats.Summary())
		return nil
	}
}

// NewImportFeedQueue creates the backlite queue for feed imports.
func NewImportFeedQueue(r FeedRunner, timeout time.Duration) backlite.Queue {
	return backlite.NewQueue(ImportFeedProcessor(r, timeout))
}
