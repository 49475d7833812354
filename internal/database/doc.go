// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, country seeding, settings
//	├── entries/         # Entry lookups and writes used by the importers
//	├── categories/      # Entry to category attachment
//	├── countries/       # Cached country resolution
//	├── attachments/     # Blob metadata rows
//	└── settings/        # Application settings
//
// # Using Sub-packages
//
//	db, err := database.Open(cfg.Database, logger.Warn)
//
//	entryRepo := entries.NewRepository(db.DB)
//	categoryRepo := categories.NewRepository(db.DB)
//
// Compile-time checks for the interfaces each repository serves live in
// internal/interfaces:
//
//	var _ orchestrator.EntryStore = (*entries.Repository)(nil)
//
// Both sqlite and postgres are supported. Queries that compare timestamps
// use half-open ranges so they behave the same on both.
package database
