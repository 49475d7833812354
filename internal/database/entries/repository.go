// Package entries provides database operations for calendar entries.
//
// Lookups by identifier see soft-deleted rows so that a re-import revives
// them instead of inserting a second row. Title and date matching only sees
// live rows.
//
// # Usage
//
//	repo := entries.NewRepository(db)
//	entry, err := repo.FindByIdentifier(ctx, "split-123")
package entries

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/mrlokans/eventsync/internal/entities"
)

// Repository handles all entry database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new entries repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByIdentifier returns the entry with the given identifier, including
// soft-deleted rows.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*entities.Entry, error) {
	var entry entities.Entry
	err := r.db.WithContext(ctx).Unscoped().Where("identifier = ?", identifier).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find entry by identifier %q: %w", identifier, err)
	}
	return &entry, nil
}

// FindMatch returns the oldest live entry with exactly this title whose
// start and end fall on the same calendar days. A nil start or end only
// matches rows where that column is NULL.
func (r *Repository) FindMatch(ctx context.Context, title string, start, end *time.Time) (*entities.Entry, error) {
	query, args, err := MatchPredicate(title, start, end).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build match query: %w", err)
	}

	var entry entities.Entry
	err = r.db.WithContext(ctx).Where(query, args...).Order("id ASC").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find entry matching %q: %w", title, err)
	}
	return &entry, nil
}

// MatchPredicate builds the title plus calendar-date condition shared by
// the feed and spreadsheet importers.
func MatchPredicate(title string, start, end *time.Time) sq.Sqlizer {
	return sq.And{
		sq.Eq{"title": title},
		sameDay("starts_at", start),
		sameDay("ends_at", end),
	}
}

func sameDay(column string, t *time.Time) sq.Sqlizer {
	if t == nil {
		return sq.Eq{column: nil}
	}
	day := entities.StartOfDay(*t)
	return sq.And{
		sq.GtOrEq{column: day},
		sq.Lt{column: day.AddDate(0, 0, 1)},
	}
}

// Create inserts a new entry.
func (r *Repository) Create(ctx context.Context, entry *entities.Entry) error {
	entry.Start = entities.WallClockPtr(entry.Start)
	entry.End = entities.WallClockPtr(entry.End)
	if err := r.db.WithContext(ctx).Omit("Categories", "Country").Create(entry).Error; err != nil {
		return fmt.Errorf("create entry %q: %w", entry.Title, err)
	}
	return nil
}

// CreateBatch inserts entries in batches of batchSize.
func (r *Repository) CreateBatch(ctx context.Context, batch []*entities.Entry, batchSize int) error {
	if len(batch) == 0 {
		return nil
	}
	for _, entry := range batch {
		entry.Start = entities.WallClockPtr(entry.Start)
		entry.End = entities.WallClockPtr(entry.End)
	}
	if err := r.db.WithContext(ctx).Omit("Categories", "Country").CreateInBatches(batch, batchSize).Error; err != nil {
		return fmt.Errorf("create %d entries: %w", len(batch), err)
	}
	return nil
}

// Update writes the given columns on the entry with id. Soft-deleted rows
// are updated too; callers revive them by passing "deleted_at": nil.
func (r *Repository) Update(ctx context.Context, id uint, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	for _, column := range []string{"starts_at", "ends_at"} {
		if t, ok := columns[column].(*time.Time); ok {
			columns[column] = entities.WallClockPtr(t)
		}
	}
	result := r.db.WithContext(ctx).Unscoped().Model(&entities.Entry{ID: id}).Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("update entry %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// ListWithIdentifier returns the live, non-internal entries of a source
// that carry an identifier, oldest first.
func (r *Repository) ListWithIdentifier(ctx context.Context, source string) ([]entities.Entry, error) {
	var list []entities.Entry
	err := r.db.WithContext(ctx).
		Where("source = ? AND identifier IS NOT NULL AND is_internal = ?", source, false).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list %s entries: %w", source, err)
	}
	return list, nil
}

// SlugExists reports whether any row, soft-deleted or not, uses slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&entities.Entry{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return count > 0, nil
}

// GetByID retrieves a live entry by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Entry, error) {
	var entry entities.Entry
	err := r.db.WithContext(ctx).Preload("Categories").First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SoftDelete marks the entry as deleted.
func (r *Repository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entities.Entry{}, id).Error
}

// CountBySource returns the number of live entries per source.
func (r *Repository) CountBySource(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Source string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&entities.Entry{}).
		Select("source, COUNT(*) AS count").
		Group("source").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Source] = row.Count
	}
	return counts, nil
}
