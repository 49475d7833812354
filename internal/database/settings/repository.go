// Package settings provides database operations for runtime settings such
// as per-feed URLs, toggles, schedules and last-run status.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	value, err := repo.GetValue("feed_global_url")
package settings

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/eventsync/internal/entities"
)

// Repository handles all settings database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting retrieves a setting by key.
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var setting entities.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetValue returns the stored value, or "" when the key is absent.
func (r *Repository) GetValue(key string) (string, error) {
	setting, err := r.GetSetting(key)
	if errors.Is(err, entities.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// SetSetting creates or updates a setting.
func (r *Repository) SetSetting(key, value string) error {
	return r.SetMany(map[string]string{key: value})
}

// SetMany upserts several settings in one transaction.
func (r *Repository) SetMany(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			setting := entities.Setting{Key: key, Value: value}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&setting).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByPrefix returns all settings whose key starts with prefix.
func (r *Repository) ListByPrefix(prefix string) ([]entities.Setting, error) {
	var list []entities.Setting
	err := r.db.Where("key LIKE ?", prefix+"%").Order("key ASC").Find(&list).Error
	return list, err
}

// DeleteSetting removes a setting by key.
func (r *Repository) DeleteSetting(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}
