package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/eventsync/internal/orchestrator"
	"github.com/mrlokans/eventsync/internal/settingsstore"
	"github.com/mrlokans/eventsync/internal/tasks"
)

type fakeConfigs map[string]settingsstore.FeedConfig

func (f fakeConfigs) GetFeedConfig(source string) settingsstore.FeedConfig {
	return f[source]
}

type fakeQueue struct {
	enqueued []tasks.ImportFeedTask
	err      error
}

func (q *fakeQueue) EnqueueImport(task tasks.ImportFeedTask) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func TestFeedImportSchedulerStart(t *testing.T) {
	configs := fakeConfigs{
		"global": {Source: "global", Enabled: true, URL: "http://feed", Schedule: "0 3 * * *"},
		"split":  {Source: "split", Enabled: false, URL: "http://split", Schedule: "30 3 * * *"},
	}
	s := NewFeedImportScheduler(configs, &fakeQueue{}, []string{"global", "split"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.NotNil(t, s.NextRun("global"))
	assert.Nil(t, s.NextRun("split"), "disabled feeds are not scheduled")

	// Starting twice is a no-op.
	require.NoError(t, s.Start(ctx))
}

func TestFeedImportSchedulerSkipsFeedWithoutURL(t *testing.T) {
	configs := fakeConfigs{
		"global": {Source: "global", Enabled: true, Schedule: "0 3 * * *"},
	}
	s := NewFeedImportScheduler(configs, &fakeQueue{}, []string{"global"})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Nil(t, s.NextRun("global"))
}

func TestFeedImportSchedulerInvalidSchedule(t *testing.T) {
	configs := fakeConfigs{
		"global": {Source: "global", Enabled: true, URL: "http://feed", Schedule: "every day"},
	}
	s := NewFeedImportScheduler(configs, &fakeQueue{}, []string{"global"})

	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "invalid cron schedule")
	assert.False(t, s.IsRunning())
}

func TestFeedImportSchedulerStopAndReschedule(t *testing.T) {
	configs := fakeConfigs{
		"global": {Source: "global", Enabled: true, URL: "http://feed", Schedule: "0 3 * * *"},
	}
	s := NewFeedImportScheduler(configs, &fakeQueue{}, []string{"global"})
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun("global"))

	configs["global"] = settingsstore.FeedConfig{Source: "global", Enabled: false}
	require.NoError(t, s.Reschedule(ctx))
	defer s.Stop()
	assert.Nil(t, s.NextRun("global"))
}

func TestFeedImportSchedulerWatchesContextOnce(t *testing.T) {
	configs := fakeConfigs{
		"global": {Source: "global", Enabled: true, URL: "http://feed", Schedule: "0 3 * * *"},
	}
	s := NewFeedImportScheduler(configs, &fakeQueue{}, []string{"global"})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Reschedule(ctx))
	}
	assert.Equal(t, 1, s.watchers)

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestFeedImportSchedulerFailedStartLeavesNoEntries(t *testing.T) {
	configs := fakeConfigs{
		"global": {Source: "global", Enabled: true, URL: "http://feed", Schedule: "0 3 * * *"},
		"split":  {Source: "split", Enabled: true, URL: "http://split", Schedule: "every day"},
	}
	s := NewFeedImportScheduler(configs, &fakeQueue{}, []string{"global", "split"})

	require.Error(t, s.Start(context.Background()))
	assert.Empty(t, s.entries)
	assert.Empty(t, s.cron.Entries())
}

func TestFeedImportSchedulerEnqueue(t *testing.T) {
	queue := &fakeQueue{}
	s := NewFeedImportScheduler(fakeConfigs{}, queue, []string{"global"})

	s.enqueue("global")
	id, err := s.RunNow("split", orchestrator.ModeDryRun)
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)

	assert.Equal(t, []tasks.ImportFeedTask{
		{Source: "global", Mode: orchestrator.ModeImport},
		{Source: "split", Mode: orchestrator.ModeDryRun},
	}, queue.enqueued)

	queue.err = errors.New("queue closed")
	s.enqueue("global")
	assert.Len(t, queue.enqueued, 2)
}
