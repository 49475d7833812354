package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Feeds
		Import
		Blob
		Tasks
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Driver string // "sqlite" or "postgres"
		Path   string // sqlite file path
		DSN    string // postgres connection string
	}

	// Feeds holds process-level feed options. Per-feed URL, toggle and
	// schedule are resolved by settingsstore.
	Feeds struct {
		FetchTimeout time.Duration
	}

	Import struct {
		Timezone          string
		DefaultCategoryID uint
		ImageTimeout      time.Duration
		BatchSize         int
	}

	Blob struct {
		Backend  string // "local" or "s3"
		Dir      string
		S3Bucket string
		S3Region string
		S3Prefix string
	}

	Tasks struct {
		Enabled         bool
		Workers         int
		TaskTimeout     time.Duration
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}

	Log struct {
		Format string // "text" or "json"
		Level  string
	}
)

// Location returns the configured import timezone, falling back to UTC when
// the name cannot be loaded.
func (i Import) Location() *time.Location {
	loc, err := time.LoadLocation(i.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return NewConfigurationError("DATABASE_PATH", "required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return NewConfigurationError("DATABASE_DSN", "required for the postgres driver")
		}
	default:
		return NewConfigurationError("DATABASE_DRIVER", "unknown driver %q", c.Database.Driver)
	}

	switch c.Blob.Backend {
	case BlobBackendLocal:
	case BlobBackendS3:
		if c.Blob.S3Bucket == "" {
			return NewConfigurationError("S3_BUCKET", "required for the s3 blob backend")
		}
	default:
		return NewConfigurationError("BLOB_BACKEND", "unknown backend %q", c.Blob.Backend)
	}
	return nil
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	v.SetDefault("feed_timeout", "60s")

	// Import defaults
	v.SetDefault("import_timezone", DefaultTimezone)
	v.SetDefault("import_default_category_id", 0)
	v.SetDefault("image_timeout", "30s")
	v.SetDefault("import_batch_size", 100)

	// Blob storage defaults
	v.SetDefault("blob_backend", BlobBackendLocal)
	v.SetDefault("blob_dir", DefaultBlobDir)
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_region", "eu-central-1")
	v.SetDefault("s3_prefix", "")

	// Task queue defaults. Imports must never run concurrently, so a single
	// worker is used regardless of TASK_WORKERS.
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_timeout", "30m")
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: v.GetString("DATABASE_DRIVER"),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Feeds: Feeds{
			FetchTimeout: v.GetDuration("FEED_TIMEOUT"),
		},
		Import: Import{
			Timezone:          v.GetString("IMPORT_TIMEZONE"),
			DefaultCategoryID: v.GetUint("IMPORT_DEFAULT_CATEGORY_ID"),
			ImageTimeout:      v.GetDuration("IMAGE_TIMEOUT"),
			BatchSize:         v.GetInt("IMPORT_BATCH_SIZE"),
		},
		Blob: Blob{
			Backend:  v.GetString("BLOB_BACKEND"),
			Dir:      v.GetString("BLOB_DIR"),
			S3Bucket: v.GetString("S3_BUCKET"),
			S3Region: v.GetString("S3_REGION"),
			S3Prefix: v.GetString("S3_PREFIX"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         1,
			TaskTimeout:     v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Log: Log{
			Format: v.GetString("LOG_FORMAT"),
			Level:  v.GetString("LOG_LEVEL"),
		},
	}
}
