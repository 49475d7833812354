// Package categories provides database operations for entry categories.
//
// # Usage
//
//	repo := categories.NewRepository(db)
//	attached, err := repo.Attach(ctx, entryID, categoryID)
package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/eventsync/internal/entities"
)

const joinTable = "entry_categories"

// Repository handles all category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Attach ensures the entry belongs to the category. It reports true only
// when a new join row was written.
func (r *Repository) Attach(ctx context.Context, entryID, categoryID uint) (bool, error) {
	row := map[string]any{"entry_id": entryID, "category_id": categoryID}
	result := r.db.WithContext(ctx).Table(joinTable).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		return false, fmt.Errorf("attach category %d to entry %d: %w", categoryID, entryID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// HasAny reports whether the entry has at least one category.
func (r *Repository) HasAny(ctx context.Context, entryID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(joinTable).Where("entry_id = ?", entryID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetOrCreate retrieves or creates a category (case-insensitive).
func (r *Repository) GetOrCreate(ctx context.Context, name string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = entities.Category{
			Name: name,
			Slug: slug.Make(name),
		}
		if err := r.db.WithContext(ctx).Create(&category).Error; err != nil {
			return nil, err
		}
		return &category, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetByID retrieves a category by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ForEntry lists the categories attached to an entry.
func (r *Repository) ForEntry(ctx context.Context, entryID uint) ([]entities.Category, error) {
	var list []entities.Category
	err := r.db.WithContext(ctx).
		Joins("JOIN "+joinTable+" ON "+joinTable+".category_id = categories.id").
		Where(joinTable+".entry_id = ?", entryID).
		Order("categories.id ASC").
		Find(&list).Error
	return list, err
}
