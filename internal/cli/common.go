// Package cli implements the import subcommands.
package cli

import (
	"os"

	gormlogger "gorm.io/gorm/logger"

	"github.com/mrlokans/eventsync/internal/config"
	"github.com/mrlokans/eventsync/internal/database"
	"github.com/mrlokans/eventsync/internal/logger"
)

// loadConfig reads the process configuration and applies command-line
// overrides. verbose switches logging to debug.
func loadConfig(dbPath string, verbose bool) (*config.Config, error) {
	cfg := config.NewConfig()
	if dbPath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = dbPath
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logger.Setup(os.Stderr, cfg.Log.Format, cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*database.Database, error) {
	return database.Open(cfg.Database, gormlogger.Warn)
}
