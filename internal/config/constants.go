package config

// Default paths and values
const (
	// DefaultDatabasePath is the default path for the sqlite database
	DefaultDatabasePath = "./eventsync.db"

	// DefaultBlobDir is where cover images are written by the local blob backend
	DefaultBlobDir = "./media"

	// DefaultTimezone is the wall-clock zone feed timestamps are converted to
	DefaultTimezone = "Europe/Berlin"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Blob backends
const (
	BlobBackendLocal = "local"
	BlobBackendS3    = "s3"
)
