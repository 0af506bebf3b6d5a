package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

const schemaVersionSQL = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
`

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_contact_cache_and_runs",
		Up:      migrationV1,
	},
}

// RunMigrations executes all pending migrations
func RunMigrations() error {
	return runMigrations(db)
}

func runMigrations(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database not open")
	}

	if _, err := db.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		if err := migration.Up(db); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the contact cache and the registration run log
func migrationV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS contact_cache (
			account_id INTEGER PRIMARY KEY,
			payload TEXT NOT NULL,
			contact_count INTEGER NOT NULL DEFAULT 0,
			fetched_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS registration_runs (
			id TEXT PRIMARY KEY,
			account_id INTEGER NOT NULL,
			event_id INTEGER NOT NULL,
			event_name TEXT,
			registration_type_id INTEGER NOT NULL,
			statuses TEXT,
			pending INTEGER NOT NULL DEFAULT 0,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			finished_at DATETIME
		);

		CREATE INDEX IF NOT EXISTS idx_registration_runs_event ON registration_runs(event_id);

		CREATE TABLE IF NOT EXISTS registration_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			contact_id INTEGER NOT NULL,
			attempt INTEGER NOT NULL,
			outcome TEXT NOT NULL CHECK(outcome IN ('success', 'failed', 'verified')),
			error TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (run_id) REFERENCES registration_runs(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_registration_attempts_run ON registration_attempts(run_id);
	`)
	return err
}
