package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/eventsync/internal/config"
	"github.com/mrlokans/eventsync/internal/orchestrator"
	"github.com/mrlokans/eventsync/internal/runner"
)

type fakeRunner struct {
	requests chan runner.Request
	err      error
}

func newFakeRunner(err error) *fakeRunner {
	return &fakeRunner{requests: make(chan runner.Request, 4), err: err}
}

func (f *fakeRunner) Run(_ context.Context, req runner.Request) (*orchestrator.Stats, error) {
	f.requests <- req
	if f.err != nil {
		return nil, f.err
	}
	return &orchestrator.Stats{Source: req.Source, Mode: req.Mode}, nil
}

// blockingRunner runs until its context ends.
type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, _ runner.Request) (*orchestrator.Stats, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	client, err := NewClient(dbPath, DefaultConfig(), newFakeRunner(nil))
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestNewClientForcesSingleWorker(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 4

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg, newFakeRunner(nil))
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 1, client.config.Workers)
}

func TestClientStartStop(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), DefaultConfig(), newFakeRunner(nil))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestStopBeforeStart(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), DefaultConfig(), newFakeRunner(nil))
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.Stop(context.Background()))
}

func TestImportFeedTaskRunsThroughQueue(t *testing.T) {
	fake := newFakeRunner(nil)
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), DefaultConfig(), fake)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.EnqueueImport(ImportFeedTask{Source: "global", Mode: orchestrator.ModePopulateMissing})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case req := <-fake.requests:
		assert.Equal(t, "global", req.Source)
		assert.Equal(t, orchestrator.ModePopulateMissing, req.Mode)
	case <-time.After(5 * time.Second):
		t.Fatal("import task was not executed within timeout")
	}
}

func TestImportFeedProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled feed is not a failure", func(t *testing.T) {
		process := ImportFeedProcessor(newFakeRunner(runner.ErrFeedDisabled), time.Minute)
		assert.NoError(t, process(ctx, ImportFeedTask{Source: "split"}))
	})

	t.Run("run errors fail the task", func(t *testing.T) {
		process := ImportFeedProcessor(newFakeRunner(errors.New("boom")), time.Minute)
		assert.EqualError(t, process(ctx, ImportFeedTask{Source: "split"}), "import split: boom")
	})

	t.Run("configured timeout bounds the run", func(t *testing.T) {
		process := ImportFeedProcessor(blockingRunner{}, 20*time.Millisecond)
		err := process(ctx, ImportFeedTask{Source: "global"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("missing runner", func(t *testing.T) {
		process := ImportFeedProcessor(nil, time.Minute)
		assert.Error(t, process(ctx, ImportFeedTask{Source: "split"}))
	})
}

func TestImportFeedTaskConfig(t *testing.T) {
	cfg := ImportFeedTask{Source: "global"}.Config()

	assert.Equal(t, QueueImportFeed, cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, MaxTaskTimeout, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.Tasks{TaskTimeout: 10 * time.Minute})

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 10*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 45*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)

	capped := FromConfig(config.Tasks{TaskTimeout: 10 * time.Hour})
	assert.Equal(t, MaxTaskTimeout, capped.TaskTimeout)
	assert.Greater(t, capped.ReleaseAfter, capped.TaskTimeout)
}

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "events-tasks.db"), TasksDBPath(filepath.Join("data", "events.db")))
}
