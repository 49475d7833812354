package runner

import (
	"context"
	"fmt"

	"github.com/mrlokans/eventsync/internal/blobstore"
	"github.com/mrlokans/eventsync/internal/config"
	"github.com/mrlokans/eventsync/internal/database"
	"github.com/mrlokans/eventsync/internal/database/attachments"
	"github.com/mrlokans/eventsync/internal/database/categories"
	"github.com/mrlokans/eventsync/internal/database/countries"
	"github.com/mrlokans/eventsync/internal/database/entries"
	"github.com/mrlokans/eventsync/internal/database/settings"
	"github.com/mrlokans/eventsync/internal/feeds"
	"github.com/mrlokans/eventsync/internal/settingsstore"
	"github.com/mrlokans/eventsync/internal/textnorm"
)

// NewFromConfig wires a Runner against db using the process configuration.
func NewFromConfig(ctx context.Context, cfg *config.Config, db *database.Database) (*Runner, error) {
	blobs, err := blobstore.Open(ctx, cfg.Blob, attachments.NewRepository(db.DB))
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	return New(Deps{
		Settings:          settingsstore.New(settings.NewRepository(db.DB)),
		Fetcher:           feeds.NewClient(cfg.Feeds.FetchTimeout),
		Entries:           entries.NewRepository(db.DB),
		Blobs:             blobs,
		Images:            blobstore.NewFetcher(cfg.Import.ImageTimeout),
		Categories:        categories.NewRepository(db.DB),
		Countries:         countries.NewRepository(db.DB),
		Normalizer:        textnorm.New(),
		Location:          cfg.Import.Location(),
		DefaultCategoryID: cfg.Import.DefaultCategoryID,
	}), nil
}
