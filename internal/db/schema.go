package db

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// Tests use this schema via GetSchemaSQL() so repository code that references
// a missing column fails with "no such column" at test time.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Cached contact lists, one row per account
CREATE TABLE IF NOT EXISTS contact_cache (
	account_id INTEGER PRIMARY KEY,
	payload TEXT NOT NULL,
	contact_count INTEGER NOT NULL DEFAULT 0,
	fetched_at DATETIME NOT NULL
);

-- Confirmed sync-registrants runs
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

-- Every submission attempt of a run
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
`

// InitSchema creates the database schema
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		// schema_version table exists - run any pending migrations
		return RunMigrations()
	}

	// Fresh install - create the current schema directly and mark every
	// migration as applied
	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}
	if _, err := db.Exec(schemaVersionSQL); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
