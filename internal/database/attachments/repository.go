// Package attachments stores the metadata rows that associate blobs with
// entries. The blob bytes live in a blobstore backend.
package attachments

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/eventsync/internal/entities"
)

// Repository handles attachment metadata.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new attachments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the attachment for the entry and field.
func (r *Repository) Get(ctx context.Context, entryID uint, field string) (*entities.Attachment, error) {
	var attachment entities.Attachment
	err := r.db.WithContext(ctx).Where("entry_id = ? AND field = ?", entryID, field).First(&attachment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// Put creates or replaces the attachment for (EntryID, Field).
func (r *Repository) Put(ctx context.Context, attachment *entities.Attachment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_id"}, {Name: "field"}},
		DoUpdates: clause.AssignmentColumns([]string{"key", "file_name", "content_type", "size"}),
	}).Create(attachment).Error
}

// Delete removes the attachment row. Missing rows are not an error.
func (r *Repository) Delete(ctx context.Context, entryID uint, field string) error {
	return r.db.WithContext(ctx).
		Where("entry_id = ? AND field = ?", entryID, field).
		Delete(&entities.Attachment{}).Error
}
