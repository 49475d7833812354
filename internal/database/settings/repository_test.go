package settings

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/eventsync/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_settings_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Setting{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_GetSetting_Missing(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetSetting("feed_global_url")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	value, err := repo.GetValue("feed_global_url")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestRepository_SetSetting_Upsert(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting("feed_global_url", "https://a.example/feed"))
	require.NoError(t, repo.SetSetting("feed_global_url", "https://b.example/feed"))

	value, err := repo.GetValue("feed_global_url")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example/feed", value)

	list, err := repo.ListByPrefix("feed_global_")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRepository_SetMany(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetMany(map[string]string{
		"feed_split_last_status":  "success",
		"feed_split_last_summary": "inserted=3",
		"feed_global_last_status": "failed",
	})
	require.NoError(t, err)

	list, err := repo.ListByPrefix("feed_split_")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "feed_split_last_status", list[0].Key)
	assert.Equal(t, "feed_split_last_summary", list[1].Key)
}

func TestRepository_DeleteSetting(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting("feed_global_enabled", "true"))
	require.NoError(t, repo.DeleteSetting("feed_global_enabled"))

	_, err := repo.GetSetting("feed_global_enabled")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
