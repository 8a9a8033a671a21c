package migration

import (
	"context"
	"time"
)

// Migration represents a versioned schema change.
type Migration struct {
	Version     string // Version identifier (e.g., "001", "002")
	Description string // Human-readable description of the migration
	SQL         string // SQL statements to execute
	FilePath    string // Path of the migration inside its file system
	Checksum    string // SHA-256 of the file content
}

// AppliedMigration represents a migration recorded in schema_migrations.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status provides information about the current migration state.
type Status struct {
	CurrentVersion    string
	AppliedMigrations []AppliedMigration
	PendingMigrations []Migration
}

// Scanner loads the available migrations.
type Scanner interface {
	ScanMigrations() ([]Migration, error)
}

// Executor handles the execution of migrations against the database.
type Executor interface {
	// ExecuteMigration runs a single migration within a transaction and records it.
	ExecuteMigration(ctx context.Context, migration Migration) error
	// InitializeVersionTable creates the schema_migrations table if it doesn't exist.
	InitializeVersionTable(ctx context.Context) error
	// GetAppliedVersions returns all applied migrations ordered by version.
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}
