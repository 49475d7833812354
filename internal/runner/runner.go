// Package runner performs one feed import end to end: resolve the feed
// configuration, fetch, group, reconcile and record the outcome.
//
// The CLI commands, the cron scheduler and the task queue all go through
// Runner so a run behaves the same no matter how it was started.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mrlokans/eventsync/internal/config"
	"github.com/mrlokans/eventsync/internal/entities"
	"github.com/mrlokans/eventsync/internal/feeds"
	"github.com/mrlokans/eventsync/internal/importers"
	"github.com/mrlokans/eventsync/internal/logger"
	"github.com/mrlokans/eventsync/internal/orchestrator"
	"github.com/mrlokans/eventsync/internal/settingsstore"
	"github.com/mrlokans/eventsync/internal/textnorm"
)

// ErrFeedDisabled is returned when a feed is switched off and no URL
// override was given. It is not a failure.
var ErrFeedDisabled = errors.New("feed is disabled")

// Sources lists the feeds a Runner can import.
var Sources = []string{entities.SourceGlobal, entities.SourceSplit}

// FeedSettings resolves per-feed configuration and records run outcomes.
type FeedSettings interface {
	GetFeedConfig(source string) settingsstore.FeedConfig
	SetFeedStatus(source, status, summary string) error
}

// FeedFetcher downloads and decodes both feed protocols.
type FeedFetcher interface {
	FetchGlobal(ctx context.Context, url string) ([]feeds.GlobalItem, error)
	FetchSplit(ctx context.Context, url string) ([]feeds.SplitArticle, error)
}

// Deps are the collaborators a Runner wires into every run.
type Deps struct {
	Settings   FeedSettings
	Fetcher    FeedFetcher
	Entries    orchestrator.EntryStore
	Blobs      orchestrator.BlobStore
	Images     orchestrator.ImageFetcher
	Categories orchestrator.CategoryAttacher
	Countries  importers.CountryLookup
	Normalizer *textnorm.Normalizer
	// Location is the wall-clock zone stored timestamps are expressed in.
	Location *time.Location
	// DefaultCategoryID is attached to imported entries; zero disables it.
	DefaultCategoryID uint
}

// Request selects what a single run does.
type Request struct {
	Source string
	Mode   orchestrator.Mode
	// URL overrides the configured feed URL and bypasses the enabled toggle.
	URL string
}

// Runner executes feed imports.
type Runner struct {
	deps Deps
}

func New(deps Deps) *Runner {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Normalizer == nil {
		deps.Normalizer = textnorm.New()
	}
	return &Runner{deps: deps}
}

// IsSource reports whether source names a known feed.
func IsSource(source string) bool {
	for _, s := range Sources {
		if s == source {
			return true
		}
	}
	return false
}

// Run imports one feed. Configuration, fetch and parse failures abort the
// run and are returned; per-record failures are reported in the stats.
func (r *Runner) Run(ctx context.Context, req Request) (*orchestrator.Stats, error) {
	if req.Mode == "" {
		req.Mode = orchestrator.ModeImport
	}
	ctx = logger.Ctx(ctx, slog.String("feed", req.Source), slog.String("mode", string(req.Mode)))

	if !IsSource(req.Source) {
		return nil, config.NewConfigurationError("source", "unknown feed %q", req.Source)
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		cfg := r.deps.Settings.GetFeedConfig(req.Source)
		if !cfg.Enabled {
			slog.InfoContext(ctx, "feed disabled, nothing to do")
			return nil, ErrFeedDisabled
		}
		url = strings.TrimSpace(cfg.URL)
	}
	if url == "" {
		key := strings.ToUpper(entities.FeedSettingKey(req.Source, entities.SettingSuffixURL))
		return nil, config.NewConfigurationError(key, "feed URL is not configured")
	}

	stats, err := r.dispatch(ctx, req.Source, req.Mode, url)
	r.recordStatus(ctx, req, stats, err)
	return stats, err
}

func (r *Runner) dispatch(ctx context.Context, source string, mode orchestrator.Mode, url string) (*orchestrator.Stats, error) {
	parser := importers.NewTimeParser(r.deps.Location)
	countries := importers.NewCountryResolver(r.deps.Countries)

	switch source {
	case entities.SourceGlobal:
		items, err := r.deps.Fetcher.FetchGlobal(ctx, url)
		if err != nil {
			return nil, err
		}
		transformer := importers.NewGlobalTransformer(r.deps.Normalizer, countries, parser)
		return run(ctx, r, mode, importers.NewGlobalGrouper(parser).Group(items), transformer)
	case entities.SourceSplit:
		items, err := r.deps.Fetcher.FetchSplit(ctx, url)
		if err != nil {
			return nil, err
		}
		transformer := importers.NewSplitTransformer(r.deps.Normalizer, countries, parser)
		return run(ctx, r, mode, importers.NewSplitGrouper(parser).Group(items), transformer)
	default:
		return nil, fmt.Errorf("no importer for feed %q", source)
	}
}

func run[T any](ctx context.Context, r *Runner, mode orchestrator.Mode, groups *importers.Groups[T], transformer orchestrator.Transformer[T]) (*orchestrator.Stats, error) {
	orch := orchestrator.New[T](transformer, r.deps.Entries, r.deps.Blobs, r.deps.Images, r.deps.Categories, orchestrator.Options{
		Mode:              mode,
		DefaultCategoryID: r.deps.DefaultCategoryID,
	})
	return orch.Run(ctx, groups)
}

// recordStatus stores the last-run outcome. Dry runs leave no trace.
func (r *Runner) recordStatus(ctx context.Context, req Request, stats *orchestrator.Stats, runErr error) {
	if !req.Mode.Writes() {
		return
	}

	status, summary := settingsstore.StatusSuccess, ""
	if stats != nil {
		summary = stats.Summary()
	}
	if runErr != nil {
		status, summary = settingsstore.StatusFailed, runErr.Error()
	}

	if err := r.deps.Settings.SetFeedStatus(req.Source, status, summary); err != nil {
		slog.WarnContext(ctx, "failed to record feed status", "error", err)
	}
}
