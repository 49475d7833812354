// Package blobstore stores files owned by entries, such as cover images.
//
// Bytes go to a Backend (local directory or S3); one metadata row per
// (entry, field) records where they are.
package blobstore

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/mrlokans/eventsync/internal/config"
	"github.com/mrlokans/eventsync/internal/entities"
)

// Backend stores raw bytes by key.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// AttachmentRepository persists blob metadata rows.
type AttachmentRepository interface {
	Get(ctx context.Context, entryID uint, field string) (*entities.Attachment, error)
	Put(ctx context.Context, attachment *entities.Attachment) error
	Delete(ctx context.Context, entryID uint, field string) error
}

var extensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/avif":    ".avif",
}

// Store associates blobs with entries.
type Store struct {
	backend     Backend
	attachments AttachmentRepository
}

func New(backend Backend, attachments AttachmentRepository) *Store {
	return &Store{backend: backend, attachments: attachments}
}

// Open builds the store for the configured backend.
func Open(ctx context.Context, cfg config.Blob, attachments AttachmentRepository) (*Store, error) {
	switch cfg.Backend {
	case config.BlobBackendS3:
		backend, err := NewS3Backend(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
		if err != nil {
			return nil, err
		}
		return New(backend, attachments), nil
	case config.BlobBackendLocal, "":
		backend, err := NewLocalBackend(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return New(backend, attachments), nil
	default:
		return nil, config.NewConfigurationError("BLOB_BACKEND", "unknown backend %q", cfg.Backend)
	}
}

// Exists reports whether the entry has a blob for field.
func (s *Store) Exists(ctx context.Context, entryID uint, field string) (bool, error) {
	_, err := s.attachments.Get(ctx, entryID, field)
	if errors.Is(err, entities.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Store saves data for the entry's field, replacing any previous blob.
func (s *Store) Store(ctx context.Context, entryID uint, field, fileName, contentType string, data []byte) error {
	key := Key(entryID, field, fileName, contentType, data)
	if err := s.backend.Put(ctx, key, contentType, data); err != nil {
		return fmt.Errorf("store blob %s: %w", key, err)
	}

	previous, err := s.attachments.Get(ctx, entryID, field)
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		return err
	}

	attachment := &entities.Attachment{
		EntryID:     entryID,
		Field:       field,
		Key:         key,
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	if err := s.attachments.Put(ctx, attachment); err != nil {
		return fmt.Errorf("save attachment for entry %d: %w", entryID, err)
	}

	if previous != nil && previous.Key != key {
		if err := s.backend.Delete(ctx, previous.Key); err != nil {
			slog.WarnContext(ctx, "failed to delete replaced blob", "key", previous.Key, "error", err)
		}
	}
	return nil
}

// Delete removes the entry's blob for field. Missing blobs are ignored.
func (s *Store) Delete(ctx context.Context, entryID uint, field string) error {
	attachment, err := s.attachments.Get(ctx, entryID, field)
	if errors.Is(err, entities.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, attachment.Key); err != nil {
		return fmt.Errorf("delete blob %s: %w", attachment.Key, err)
	}
	return s.attachments.Delete(ctx, entryID, field)
}

// Key derives the storage key: entries/<id>/<field>/<hash><ext>.
func Key(entryID uint, field, fileName, contentType string, data []byte) string {
	sum := sha256.Sum256(data)
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" || len(ext) > 6 {
		ext = extensions[contentType]
	}
	return fmt.Sprintf("entries/%d/%s/%x%s", entryID, field, sum[:8], ext)
}
