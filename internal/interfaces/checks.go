package interfaces

// Compile-time checks that each concrete collaborator satisfies the
// interface its consumer declares.

import (
	"github.com/mrlokans/eventsync/internal/blobstore"
	"github.com/mrlokans/eventsync/internal/database/attachments"
	"github.com/mrlokans/eventsync/internal/database/categories"
	"github.com/mrlokans/eventsync/internal/database/countries"
	"github.com/mrlokans/eventsync/internal/database/entries"
	"github.com/mrlokans/eventsync/internal/database/settings"
	"github.com/mrlokans/eventsync/internal/feeds"
	"github.com/mrlokans/eventsync/internal/http"
	"github.com/mrlokans/eventsync/internal/importers"
	"github.com/mrlokans/eventsync/internal/orchestrator"
	"github.com/mrlokans/eventsync/internal/runner"
	"github.com/mrlokans/eventsync/internal/scheduler"
	"github.com/mrlokans/eventsync/internal/settingsstore"
	"github.com/mrlokans/eventsync/internal/spreadsheet"
	"github.com/mrlokans/eventsync/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ orchestrator.EntryStore = (*entries.Repository)(nil)
var _ spreadsheet.EntryStore = (*entries.Repository)(nil)
var _ http.EntryCounter = (*entries.Repository)(nil)

var _ orchestrator.CategoryAttacher = (*categories.Repository)(nil)
var _ spreadsheet.CategoryAttacher = (*categories.Repository)(nil)

var _ importers.CountryLookup = (*countries.Repository)(nil)

var _ blobstore.AttachmentRepository = (*attachments.Repository)(nil)

var _ settingsstore.Repository = (*settings.Repository)(nil)

// =============================================================================
// Blob Storage
// =============================================================================

var _ orchestrator.BlobStore = (*blobstore.Store)(nil)
var _ orchestrator.ImageFetcher = (*blobstore.Fetcher)(nil)
var _ blobstore.Backend = (*blobstore.LocalBackend)(nil)
var _ blobstore.Backend = (*blobstore.S3Backend)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ orchestrator.Transformer[feeds.GlobalItem] = (*importers.GlobalTransformer)(nil)
var _ orchestrator.Transformer[feeds.SplitArticle] = (*importers.SplitTransformer)(nil)

var _ runner.FeedFetcher = (*feeds.Client)(nil)
var _ runner.FeedSettings = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// Scheduling and Task Queue
// =============================================================================

var _ tasks.FeedRunner = (*runner.Runner)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ scheduler.FeedConfigs = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// HTTP
// =============================================================================

var _ http.ImportQueue = (*tasks.Client)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
var _ http.NextRunner = (*scheduler.FeedImportScheduler)(nil)
var _ http.FeedStatusStore = (*settingsstore.SettingsStore)(nil)
