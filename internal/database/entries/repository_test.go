package entries

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/eventsync/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_entries_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Country{}, &entities.Category{}, &entities.Entry{})
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func ptr[T any](v T) *T {
	return &v
}

func date(y int, m time.Month, d, h, min, s int) *time.Time {
	t := time.Date(y, m, d, h, min, s, 0, time.UTC)
	return &t
}

func createEntry(t *testing.T, repo *Repository, entry entities.Entry) *entities.Entry {
	t.Helper()
	if entry.Slug == "" {
		entry.Slug = entry.Title + "-" + entry.IdentifierValue()
	}
	require.NoError(t, repo.Create(context.Background(), &entry))
	return &entry
}

func TestFindByIdentifier(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	created := createEntry(t, repo, entities.Entry{
		Identifier: ptr("E1"),
		Title:      "Spring Fair",
		Source:     entities.SourceGlobal,
	})

	found, err := repo.FindByIdentifier(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindByIdentifier(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestFindByIdentifierSeesSoftDeletedRows(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	created := createEntry(t, repo, entities.Entry{Identifier: ptr("E1"), Title: "Gone"})
	require.NoError(t, repo.SoftDelete(ctx, created.ID))

	_, err := repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	found, err := repo.FindByIdentifier(ctx, "E1")
	require.NoError(t, err)
	assert.True(t, found.DeletedAt.Valid)
}

func TestUpdateRevivesSoftDeletedRow(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	created := createEntry(t, repo, entities.Entry{Identifier: ptr("E1"), Title: "Gone"})
	require.NoError(t, repo.SoftDelete(ctx, created.ID))

	err := repo.Update(ctx, created.ID, map[string]any{
		"title":      "Back again",
		"deleted_at": nil,
	})
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Back again", found.Title)
	assert.False(t, found.DeletedAt.Valid)
}

func TestUpdateUnknownID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	err := repo.Update(context.Background(), 999, map[string]any{"title": "x"})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestFindMatchComparesCalendarDatesOnly(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	created := createEntry(t, repo, entities.Entry{
		Identifier: ptr("old-id"),
		Title:      "Spring Fair",
		Start:      date(2024, time.June, 1, 10, 0, 0),
		End:        date(2024, time.June, 1, 18, 0, 0),
	})

	found, err := repo.FindMatch(ctx, "Spring Fair", date(2024, time.June, 1, 0, 0, 0), date(2024, time.June, 1, 23, 59, 59))
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindMatch(ctx, "Spring Fair", date(2024, time.June, 2, 10, 0, 0), date(2024, time.June, 2, 18, 0, 0))
	assert.ErrorIs(t, err, entities.ErrNotFound)

	_, err = repo.FindMatch(ctx, "spring fair", date(2024, time.June, 1, 10, 0, 0), date(2024, time.June, 1, 18, 0, 0))
	assert.ErrorIs(t, err, entities.ErrNotFound, "title comparison is exact")
}

func TestFindMatchNullDates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	created := createEntry(t, repo, entities.Entry{
		Identifier: ptr("undated"),
		Title:      "Open House",
	})

	found, err := repo.FindMatch(ctx, "Open House", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindMatch(ctx, "Open House", date(2024, time.June, 1, 0, 0, 0), nil)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	createEntry(t, repo, entities.Entry{
		Identifier: ptr("dated"),
		Title:      "Workshop",
		Start:      date(2024, time.June, 1, 9, 0, 0),
		End:        date(2024, time.June, 1, 12, 0, 0),
	})
	_, err = repo.FindMatch(ctx, "Workshop", nil, nil)
	assert.ErrorIs(t, err, entities.ErrNotFound, "a missing incoming date requires a NULL stored column")
}

func TestFindMatchIgnoresSoftDeleted(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	created := createEntry(t, repo, entities.Entry{Identifier: ptr("E1"), Title: "Gone"})
	require.NoError(t, repo.SoftDelete(ctx, created.ID))

	_, err := repo.FindMatch(ctx, "Gone", nil, nil)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestMatchPredicateSQL(t *testing.T) {
	query, args, err := MatchPredicate("Fair", nil, date(2024, time.May, 4, 20, 0, 0)).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "title = ?")
	assert.Contains(t, query, "starts_at IS NULL")
	assert.Contains(t, query, "ends_at >= ?")
	assert.Contains(t, query, "ends_at < ?")
	require.Len(t, args, 3)
	assert.Equal(t, time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC), args[1])
	assert.Equal(t, time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC), args[2])
}

func TestListWithIdentifier(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	createEntry(t, repo, entities.Entry{Identifier: ptr("A1"), Title: "a", Source: entities.SourceGlobal})
	createEntry(t, repo, entities.Entry{Identifier: ptr("A2"), Title: "b", Source: entities.SourceGlobal, IsInternal: true})
	createEntry(t, repo, entities.Entry{Identifier: ptr("split-1"), Title: "c", Source: entities.SourceSplit})
	createEntry(t, repo, entities.Entry{Title: "d", Slug: "d", Source: entities.SourceGlobal})

	list, err := repo.ListWithIdentifier(ctx, entities.SourceGlobal)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A1", list[0].IdentifierValue())
}

func TestSlugExists(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	created := createEntry(t, repo, entities.Entry{Title: "x", Slug: "summer-camp"})
	require.NoError(t, repo.SoftDelete(ctx, created.ID))

	exists, err := repo.SlugExists(ctx, "summer-camp")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SlugExists(ctx, "winter-camp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateBatchAndCountBySource(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	batch := []*entities.Entry{
		{Title: "one", Slug: "one", Source: entities.SourceXLSX},
		{Title: "two", Slug: "two", Source: entities.SourceXLSX},
		{Title: "three", Slug: "three", Source: entities.SourceXLSX},
	}
	require.NoError(t, repo.CreateBatch(ctx, batch, 2))
	for _, e := range batch {
		assert.NotZero(t, e.ID)
	}

	counts, err := repo.CountBySource(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[entities.SourceXLSX])
}

func TestCreateNormalizesTimestamps(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	berlin := time.FixedZone("CEST", 2*60*60)
	start := time.Date(2024, time.May, 1, 0, 30, 0, 0, berlin)
	created := createEntry(t, repo, entities.Entry{Identifier: ptr("tz"), Title: "Late night", Start: &start})

	found, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Start)
	assert.Equal(t, "2024-05-01 00:30:00", found.Start.UTC().Format("2006-01-02 15:04:05"))
}
