package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/eventsync/internal/orchestrator"
	"github.com/mrlokans/eventsync/internal/settingsstore"
	"github.com/mrlokans/eventsync/internal/tasks"
)

// FeedStatusStore exposes per-feed settings and last-run status.
type FeedStatusStore interface {
	GetFeedConfigInfo(source string) settingsstore.FeedConfigInfo
	GetFeedStatus(source string) settingsstore.FeedStatus
}

// ImportQueue accepts import runs.
type ImportQueue interface {
	EnqueueImport(task tasks.ImportFeedTask) (string, error)
}

// NextRunner reports the next scheduled run of a feed.
type NextRunner interface {
	NextRun(source string) *time.Time
}

// EntryCounter reports how many entries each source owns.
type EntryCounter interface {
	CountBySource(ctx context.Context) (map[string]int64, error)
}

// FeedInfo is the status of one feed as returned by the imports API.
type FeedInfo struct {
	Source         string     `json:"source"`
	Enabled        bool       `json:"enabled"`
	URLConfigured  bool       `json:"url_configured"`
	Schedule       string     `json:"schedule"`
	ScheduleSource string     `json:"schedule_source"`
	Description    string     `json:"schedule_description"`
	NextRunAt      *time.Time `json:"next_run_at,omitempty"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	LastStatus     string     `json:"last_status,omitempty"`
	LastSummary    string     `json:"last_summary,omitempty"`
	Entries        int64      `json:"entries"`
}

// ImportsController serves feed status and manual import triggers.
type ImportsController struct {
	settings  FeedStatusStore
	queue     ImportQueue
	scheduler NextRunner
	entries   EntryCounter
	sources   []string
}

// NewImportsController creates an ImportsController. queue, scheduler and
// entries may be nil.
func NewImportsController(settings FeedStatusStore, queue ImportQueue, scheduler NextRunner, entries EntryCounter, sources []string) *ImportsController {
	return &ImportsController{
		settings:  settings,
		queue:     queue,
		scheduler: scheduler,
		entries:   entries,
		sources:   sources,
	}
}

// List handles GET /api/imports
func (ic *ImportsController) List(c *gin.Context) {
	var counts map[string]int64
	if ic.entries != nil {
		var err error
		counts, err = ic.entries.CountBySource(c.Request.Context())
		if err != nil {
			respondInternalError(c, err, "count entries")
			return
		}
	}

	feeds := make([]FeedInfo, 0, len(ic.sources))
	for _, source := range ic.sources {
		feeds = append(feeds, ic.feedInfo(source, counts[source]))
	}
	c.JSON(http.StatusOK, gin.H{"feeds": feeds})
}

// Get handles GET /api/imports/:source
func (ic *ImportsController) Get(c *gin.Context) {
	source, ok := ic.source(c)
	if !ok {
		return
	}

	var count int64
	if ic.entries != nil {
		counts, err := ic.entries.CountBySource(c.Request.Context())
		if err != nil {
			respondInternalError(c, err, "count entries")
			return
		}
		count = counts[source]
	}
	c.JSON(http.StatusOK, ic.feedInfo(source, count))
}

// Run handles POST /api/imports/:source/run?mode=
// The import itself runs on the task queue; the response carries the task ID.
func (ic *ImportsController) Run(c *gin.Context) {
	source, ok := ic.source(c)
	if !ok {
		return
	}

	mode, err := orchestrator.ParseMode(c.Query("mode"))
	if err != nil {
		respondBadRequest(c, "invalid_mode", err.Error())
		return
	}

	if ic.queue == nil {
		respondUnavailable(c, "task queue is disabled")
		return
	}

	taskID, err := ic.queue.EnqueueImport(tasks.ImportFeedTask{Source: source, Mode: mode})
	if err != nil {
		respondInternalError(c, err, "enqueue import")
		return
	}

	respondAccepted(c, "import enqueued", gin.H{
		"task_id": taskID,
		"source":  source,
		"mode":    mode,
	})
}

func (ic *ImportsController) source(c *gin.Context) (string, bool) {
	source := c.Param("source")
	for _, s := range ic.sources {
		if s == source {
			return source, true
		}
	}
	respondNotFound(c, "feed "+source)
	return "", false
}

func (ic *ImportsController) feedInfo(source string, entries int64) FeedInfo {
	cfg := ic.settings.GetFeedConfigInfo(source)
	status := ic.settings.GetFeedStatus(source)

	info := FeedInfo{
		Source:         source,
		Enabled:        cfg.Enabled,
		URLConfigured:  cfg.URL != "",
		Schedule:       cfg.Schedule,
		ScheduleSource: cfg.ScheduleSource,
		Description:    settingsstore.GetCronDescription(cfg.Schedule),
		LastRunAt:      status.LastRunAt,
		LastStatus:     status.Status,
		LastSummary:    status.Summary,
		Entries:        entries,
	}
	if ic.scheduler != nil {
		info.NextRunAt = ic.scheduler.NextRun(source)
	}
	return info
}
