// Package orchestrator reconciles grouped feed records with stored entries.
//
// A run processes every record to completion. Failures of a single record
// are folded into Stats as ItemErrors; only a failure to list stored
// entries aborts a run.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrlokans/eventsync/internal/entities"
	"github.com/mrlokans/eventsync/internal/importers"
	"github.com/mrlokans/eventsync/internal/logger"
)

// EntryStore is the persisted entry table.
type EntryStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*entities.Entry, error)
	FindMatch(ctx context.Context, title string, start, end *time.Time) (*entities.Entry, error)
	Create(ctx context.Context, entry *entities.Entry) error
	Update(ctx context.Context, id uint, columns map[string]any) error
	ListWithIdentifier(ctx context.Context, source string) ([]entities.Entry, error)
}

// BlobStore stores files owned by an entry, one per field.
type BlobStore interface {
	Exists(ctx context.Context, entryID uint, field string) (bool, error)
	Store(ctx context.Context, entryID uint, field, fileName, contentType string, data []byte) error
	Delete(ctx context.Context, entryID uint, field string) error
}

// ImageFetcher downloads a remote image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// CategoryAttacher links entries to categories.
type CategoryAttacher interface {
	Attach(ctx context.Context, entryID, categoryID uint) (bool, error)
	HasAny(ctx context.Context, entryID uint) (bool, error)
}

// Transformer maps one source's grouped records to entry fields.
type Transformer[T any] interface {
	Source() string
	Identifier(g *importers.Grouped[T]) string
	Title(item T) string
	BareID(identifier string) string
	Transform(ctx context.Context, g *importers.Grouped[T]) (importers.EntryFields, error)
}

// Options configure a run.
type Options struct {
	Mode Mode
	// DefaultCategoryID is attached to imported entries; zero disables it.
	DefaultCategoryID uint
}

// Orchestrator drives one run mode over a set of grouped records.
type Orchestrator[T any] struct {
	transformer Transformer[T]
	entries     EntryStore
	blobs       BlobStore
	images      ImageFetcher
	categories  CategoryAttacher
	opts        Options
	now         func() time.Time
}

// New creates an orchestrator. blobs, images and categories may be nil,
// which disables the corresponding side effect.
func New[T any](transformer Transformer[T], entries EntryStore, blobs BlobStore, images ImageFetcher, categories CategoryAttacher, opts Options) *Orchestrator[T] {
	if opts.Mode == "" {
		opts.Mode = ModeImport
	}
	return &Orchestrator[T]{
		transformer: transformer,
		entries:     entries,
		blobs:       blobs,
		images:      images,
		categories:  categories,
		opts:        opts,
		now:         time.Now,
	}
}

// Run processes groups in the configured mode.
func (o *Orchestrator[T]) Run(ctx context.Context, groups *importers.Groups[T]) (*Stats, error) {
	stats := newStats(o.transformer.Source(), o.opts.Mode)
	ctx = logger.Ctx(ctx,
		slog.String("feed", o.transformer.Source()),
		slog.String("mode", string(o.opts.Mode)),
	)

	start := time.Now()
	slog.InfoContext(ctx, "import run started", "records", groups.Len())

	if o.opts.Mode == ModePopulateMissing {
		if err := o.populateMissing(ctx, groups, stats); err != nil {
			return stats, err
		}
	} else {
		processed := make(map[string]bool, groups.Len())
		for _, g := range groups.All() {
			stats.Total++
			identifier := o.transformer.Identifier(g)
			itemCtx := logger.Ctx(ctx, slog.String("identifier", identifier))

			result, err := o.safely(identifier, func() (outcome, error) {
				return o.processItem(itemCtx, g, identifier, processed, stats)
			})
			o.fold(itemCtx, stats, result, err)
		}
	}

	slog.InfoContext(ctx, "import run finished",
		"summary", stats.Summary(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return stats, nil
}

// safely runs fn and turns a panic into an ItemError.
func (o *Orchestrator[T]) safely(identifier string, fn func() (outcome, error)) (result outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ItemError{
				Identifier: identifier,
				Op:         "panic",
				Location:   panicLocation(),
				Err:        fmt.Errorf("%v", r),
			}
		}
	}()
	return fn()
}

func (o *Orchestrator[T]) fold(ctx context.Context, stats *Stats, result outcome, err error) {
	if err != nil {
		var itemErr *ItemError
		if !errors.As(err, &itemErr) {
			itemErr = &ItemError{Op: "process", Location: "unknown", Err: err}
		}
		stats.recordError(itemErr)
		slog.ErrorContext(ctx, "import item failed",
			"op", itemErr.Op,
			"location", itemErr.Location,
			"error", itemErr.Err,
		)
		return
	}
	stats.record(result)
	slog.DebugContext(ctx, "import item processed", "outcome", result.String())
}

func (o *Orchestrator[T]) processItem(ctx context.Context, g *importers.Grouped[T], identifier string, processed map[string]bool, stats *Stats) (outcome, error) {
	title := o.transformer.Title(g.Item)
	if identifier == "" || title == "" {
		slog.DebugContext(ctx, "skipping record without identifier or title")
		return outcomeSkipped, nil
	}
	if processed[identifier] {
		return outcomeSkipped, nil
	}
	processed[identifier] = true

	fields, err := o.transformer.Transform(ctx, g)
	if err != nil {
		return 0, newItemError(identifier, "transform", err)
	}

	switch o.opts.Mode {
	case ModeUpdateMatching, ModeUpdateAllMatching:
		return o.updateMatching(ctx, identifier, fields, stats)
	default:
		return o.importItem(ctx, identifier, fields, stats)
	}
}

// importItem compares and looks up by fields.Identifier, the bounded form
// that is actually stored, so a row is found again on the next run.
func (o *Orchestrator[T]) importItem(ctx context.Context, identifier string, fields importers.EntryFields, stats *Stats) (outcome, error) {
	stored := fields.Identifier
	if stored == "" {
		stored = identifier
	}
	match, err := o.entries.FindMatch(ctx, fields.Title, fields.Start, fields.End)
	switch {
	case err == nil && match.IdentifierValue() != stored:
		slog.InfoContext(ctx, "duplicate of existing entry", "entry_id", match.ID, "existing_identifier", match.IdentifierValue())
		return outcomeDuplicate, nil
	case err != nil && !errors.Is(err, entities.ErrNotFound):
		return 0, newItemError(identifier, "find match", err)
	}

	existing, err := o.entries.FindByIdentifier(ctx, stored)
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		return 0, newItemError(identifier, "find by identifier", err)
	}

	if !o.opts.Mode.Writes() {
		if existing != nil {
			return outcomeUpdated, nil
		}
		return outcomeInserted, nil
	}

	if existing != nil {
		columns := fields.Columns()
		columns[importers.ColDeletedAt] = nil
		columns["updated_at"] = o.now()
		if err := o.entries.Update(ctx, existing.ID, columns); err != nil {
			return 0, newItemError(identifier, "update", err)
		}
		o.applySideEffects(ctx, existing.ID, fields, stats)
		return outcomeUpdated, nil
	}

	entry := fields.Entry()
	if err := o.entries.Create(ctx, entry); err != nil {
		return 0, newItemError(identifier, "insert", err)
	}
	o.applySideEffects(ctx, entry.ID, fields, stats)
	return outcomeInserted, nil
}

func (o *Orchestrator[T]) updateMatching(ctx context.Context, identifier string, fields importers.EntryFields, stats *Stats) (outcome, error) {
	match, err := o.entries.FindMatch(ctx, fields.Title, fields.Start, fields.End)
	if errors.Is(err, entities.ErrNotFound) {
		return outcomeNotFound, nil
	}
	if err != nil {
		return 0, newItemError(identifier, "find match", err)
	}

	columns := fields.Columns()
	columns["updated_at"] = o.now()
	// A matched row keeps its provenance.
	delete(columns, importers.ColSource)
	replaceAll := o.opts.Mode == ModeUpdateAllMatching
	if !replaceAll {
		for _, key := range importers.KeyColumns {
			delete(columns, key)
		}
	}

	if err := o.entries.Update(ctx, match.ID, columns); err != nil {
		return 0, newItemError(identifier, "update", err)
	}

	if replaceAll {
		if o.replaceImage(ctx, match.ID, fields) {
			stats.ImagesAdded++
		}
	}
	return outcomeUpdated, nil
}
