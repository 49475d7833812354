package settingsstore

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/eventsync/internal/database"
	"github.com/mrlokans/eventsync/internal/database/settings"
	"github.com/mrlokans/eventsync/internal/entities"
)

func setupTestStore(t *testing.T) (*SettingsStore, *settings.Repository, func()) {
	t.Helper()
	dbPath := "./test_settingsstore_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	repo := settings.NewRepository(db.DB)
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return New(repo), repo, cleanup
}

func TestFeedConfigDefaults(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	info := store.GetFeedConfigInfo(entities.SourceGlobal)
	assert.False(t, info.Enabled)
	assert.Empty(t, info.URL)
	assert.Equal(t, "0 3 * * *", info.Schedule)
	assert.Equal(t, OriginDefault, info.EnabledSource)
	assert.Equal(t, OriginDefault, info.URLSource)
	assert.Equal(t, OriginDefault, info.ScheduleSource)
}

func TestFeedConfigEnvironmentThenDatabase(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	t.Setenv("FEED_SPLIT_URL", "https://env.example/split")
	t.Setenv("FEED_SPLIT_ENABLED", "true")

	info := store.GetFeedConfigInfo(entities.SourceSplit)
	assert.True(t, info.Enabled)
	assert.Equal(t, "https://env.example/split", info.URL)
	assert.Equal(t, OriginEnvironment, info.URLSource)

	err := store.SetFeedConfig(FeedConfig{
		Source:   entities.SourceSplit,
		Enabled:  false,
		URL:      "https://db.example/split",
		Schedule: "*/30 * * * *",
	})
	require.NoError(t, err)

	info = store.GetFeedConfigInfo(entities.SourceSplit)
	assert.False(t, info.Enabled)
	assert.Equal(t, "https://db.example/split", info.URL)
	assert.Equal(t, "*/30 * * * *", info.Schedule)
	assert.Equal(t, OriginDatabase, info.EnabledSource)
	assert.Equal(t, OriginDatabase, info.URLSource)

	require.NoError(t, store.ClearFeedConfig(entities.SourceSplit))
	info = store.GetFeedConfigInfo(entities.SourceSplit)
	assert.Equal(t, OriginEnvironment, info.URLSource)
	assert.True(t, info.Enabled)
}

func TestSetFeedConfigRejectsBadSchedule(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.SetFeedConfig(FeedConfig{Source: entities.SourceGlobal, Schedule: "every day"})
	assert.Error(t, err)
}

func TestFeedStatus(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	status := store.GetFeedStatus(entities.SourceGlobal)
	assert.Nil(t, status.LastRunAt)
	assert.Empty(t, status.Status)

	require.NoError(t, store.SetFeedStatus(entities.SourceGlobal, StatusSuccess, "inserted=2 updated=1"))

	status = store.GetFeedStatus(entities.SourceGlobal)
	require.NotNil(t, status.LastRunAt)
	assert.Equal(t, StatusSuccess, status.Status)
	assert.Equal(t, "inserted=2 updated=1", status.Summary)
}

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 3 * * *"))
	assert.Error(t, ValidateCronSchedule("0 3 * *"))

	next, err := GetNextRunTime("0 * * * *")
	require.NoError(t, err)
	assert.NotNil(t, next)

	assert.Equal(t, "Daily at 03:00", GetCronDescription("0 3 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", GetCronDescription("5 4 * * *"))
}
