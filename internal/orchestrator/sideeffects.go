package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrlokans/eventsync/internal/entities"
	"github.com/mrlokans/eventsync/internal/importers"
)

// applySideEffects backfills the cover image and the default category of a
// freshly written entry. Failures are logged and counted, never returned.
func (o *Orchestrator[T]) applySideEffects(ctx context.Context, entryID uint, fields importers.EntryFields, stats *Stats) {
	added, err := o.ensureImage(ctx, entryID, fields)
	if err != nil {
		o.sideEffectFailed(ctx, stats, err)
	} else if added {
		stats.ImagesAdded++
	}

	attached, err := o.attachDefaultCategory(ctx, entryID)
	if err != nil {
		o.sideEffectFailed(ctx, stats, err)
	} else if attached {
		stats.CategoriesAttached++
	}
}

func (o *Orchestrator[T]) sideEffectFailed(ctx context.Context, stats *Stats, err error) {
	stats.SideEffectErrors++
	var sideErr *SideEffectError
	if errors.As(err, &sideErr) {
		slog.WarnContext(ctx, "side effect failed", "entry_id", sideErr.EntryID, "kind", sideErr.Kind, "error", sideErr.Err)
		return
	}
	slog.WarnContext(ctx, "side effect failed", "error", err)
}

// ensureImage stores the record's cover image unless the entry has one.
func (o *Orchestrator[T]) ensureImage(ctx context.Context, entryID uint, fields importers.EntryFields) (bool, error) {
	if fields.ImageURL == "" || o.blobs == nil || o.images == nil {
		return false, nil
	}
	exists, err := o.blobs.Exists(ctx, entryID, entities.FieldCoverImage)
	if err != nil {
		return false, &SideEffectError{EntryID: entryID, Kind: SideEffectImage, Err: err}
	}
	if exists {
		return false, nil
	}
	return o.uploadImage(ctx, entryID, fields)
}

// replaceImage deletes any stored cover image and uploads the record's
// image in its place. It reports whether a new image was stored.
func (o *Orchestrator[T]) replaceImage(ctx context.Context, entryID uint, fields importers.EntryFields) bool {
	if fields.ImageURL == "" || o.blobs == nil || o.images == nil {
		return false
	}
	if err := o.blobs.Delete(ctx, entryID, entities.FieldCoverImage); err != nil {
		slog.WarnContext(ctx, "failed to delete cover image", "entry_id", entryID, "error", err)
		return false
	}
	stored, err := o.uploadImage(ctx, entryID, fields)
	if err != nil {
		slog.WarnContext(ctx, "failed to replace cover image", "entry_id", entryID, "error", err)
		return false
	}
	return stored
}

func (o *Orchestrator[T]) uploadImage(ctx context.Context, entryID uint, fields importers.EntryFields) (bool, error) {
	data, contentType, err := o.images.Fetch(ctx, fields.ImageURL)
	if err != nil {
		return false, &SideEffectError{EntryID: entryID, Kind: SideEffectImage, Err: err}
	}
	name := fields.ImageName
	if name == "" {
		name = "cover"
	}
	if err := o.blobs.Store(ctx, entryID, entities.FieldCoverImage, name, contentType, data); err != nil {
		return false, &SideEffectError{EntryID: entryID, Kind: SideEffectImage, Err: err}
	}
	return true, nil
}

// attachDefaultCategory links the entry to the default category unless it
// already has a category.
func (o *Orchestrator[T]) attachDefaultCategory(ctx context.Context, entryID uint) (bool, error) {
	if o.opts.DefaultCategoryID == 0 || o.categories == nil {
		return false, nil
	}
	has, err := o.categories.HasAny(ctx, entryID)
	if err != nil {
		return false, &SideEffectError{EntryID: entryID, Kind: SideEffectCategory, Err: err}
	}
	if has {
		return false, nil
	}
	attached, err := o.categories.Attach(ctx, entryID, o.opts.DefaultCategoryID)
	if err != nil {
		return false, &SideEffectError{EntryID: entryID, Kind: SideEffectCategory, Err: err}
	}
	return attached, nil
}
