package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/eventsync/internal/database"
)

// RouterConfig contains all dependencies needed to create the router.
type RouterConfig struct {
	Database *database.Database
	Version  string

	// Sources lists the feeds exposed under /api/imports.
	Sources  []string
	Settings FeedStatusStore
	Entries  EntryCounter

	// Optional: without a queue manual runs answer 503.
	Queue     ImportQueue
	Tasks     TaskStatusReader
	Scheduler NextRunner
}

// NewRouter creates the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version, cfg.Queue != nil)
	router.GET("/health", health.Status)

	imports := NewImportsController(cfg.Settings, cfg.Queue, cfg.Scheduler, cfg.Entries, cfg.Sources)
	router.GET("/api/imports", imports.List)
	router.GET("/api/imports/:source", imports.Get)
	router.POST("/api/imports/:source/run", imports.Run)

	if cfg.Tasks != nil {
		tasksController := NewTasksController(cfg.Tasks)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}

// requestLogger logs one slog record per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
		)
	}
}
