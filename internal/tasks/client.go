package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client owns the import queue. Imports write to the shared entry store, so
// the queue is pinned to a single worker and runs one import at a time.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	config  Config
	running atomic.Bool
}

// TasksDBPath places the queue database next to dbPath: "data/events.db"
// becomes "data/events-tasks.db".
func TasksDBPath(dbPath string) string {
	ext := filepath.Ext(dbPath)
	return strings.TrimSuffix(dbPath, ext) + "-tasks" + ext
}

// NewClient opens the queue database and registers the import queue backed
// by feeds. Any configured worker count is overridden to one.
func NewClient(dbPath string, cfg Config, feeds FeedRunner) (*Client, error) {
	cfg.Workers = 1

	db, err := sql.Open("sqlite3", TasksDBPath(dbPath)+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open tasks database: %w", err)
	}
	// One worker plus the enqueuing side.
	db.SetMaxOpenConns(2)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          slog.Default().With("component", "import_queue"),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create import queue: %w", err)
	}
	if err := queue.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install import queue schema: %w", err)
	}
	queue.Register(NewImportFeedQueue(feeds, cfg.TaskTimeout))

	return &Client{queue: queue, db: db, config: cfg}, nil
}

// Start begins draining the queue. Calling it twice is a no-op.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	slog.Info("import queue started", "timeout", c.config.TaskTimeout)
	c.queue.Start(ctx)
}

// Stop waits for an in-flight import until ctx expires and reports whether
// the worker drained in time.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.running.Load() {
		return true
	}
	drained := c.queue.Stop(ctx)
	if drained {
		slog.Info("import queue stopped")
	} else {
		slog.Warn("import queue stop timed out, the running import was interrupted")
	}
	c.running.Store(false)
	return drained
}

func (c *Client) Close() error {
	return c.db.Close()
}

// EnqueueImport queues one feed run and returns the task ID.
func (c *Client) EnqueueImport(task ImportFeedTask) (string, error) {
	ids, err := c.queue.Add(task).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue %s import: %w", task.Source, err)
	}
	return ids[0], nil
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}
