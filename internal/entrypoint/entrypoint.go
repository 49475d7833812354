package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mrlokans/eventsync/internal/config"
	"github.com/mrlokans/eventsync/internal/database"
	"github.com/mrlokans/eventsync/internal/database/entries"
	"github.com/mrlokans/eventsync/internal/database/settings"
	http_controllers "github.com/mrlokans/eventsync/internal/http"
	"github.com/mrlokans/eventsync/internal/logger"
	"github.com/mrlokans/eventsync/internal/runner"
	"github.com/mrlokans/eventsync/internal/scheduler"
	"github.com/mrlokans/eventsync/internal/settingsstore"
	"github.com/mrlokans/eventsync/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop the scheduler and queue before the server.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server exiting")
}

// Run wires the service and serves until interrupted.
func Run(cfg *config.Config, version string) {
	logger.Setup(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	slog.Info("starting eventsync", "version", version)

	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}

	db, err := database.Open(cfg.Database, gormlogger.Warn)
	if err != nil {
		fatal("failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	feedRunner, err := runner.NewFromConfig(rootCtx, cfg, db)
	if err != nil {
		fatal("failed to initialize import runner", err)
	}

	feedSettings := settingsstore.New(settings.NewRepository(db.DB))

	routerCfg := http_controllers.RouterConfig{
		Database: db,
		Version:  version,
		Sources:  runner.Sources,
		Settings: feedSettings,
		Entries:  entries.NewRepository(db.DB),
	}

	var taskClient *tasks.Client
	var feedScheduler *scheduler.FeedImportScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks), feedRunner)
		if err != nil {
			fatal("failed to initialize task queue", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				slog.Error("error closing task client", "error", err)
			}
		}()

		go taskClient.Start(rootCtx)

		feedScheduler = scheduler.NewFeedImportScheduler(feedSettings, taskClient, runner.Sources)
		if err := feedScheduler.Start(rootCtx); err != nil {
			fatal("failed to start feed import scheduler", err)
		}

		routerCfg.Queue = taskClient
		routerCfg.Tasks = taskClient
		routerCfg.Scheduler = feedScheduler
	} else {
		slog.Warn("task queue disabled: scheduled and manual imports are off")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if feedScheduler != nil {
			feedScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		cancelRoot()
	}

	Serve(router, cfg, onShutdown)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
