package migrations

import (
	"database/sql"
	"fmt"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "Add lookup indices for history",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_history_video_id ON history(video_id);
			CREATE INDEX IF NOT EXISTS idx_history_phase ON history(phase);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_history_video_id;
			DROP INDEX IF EXISTS idx_history_phase;
		`,
	},
	{
		Version: 2,
		Name:    "Drop in-flight rows left by interrupted sessions",
		Up: `
			-- Only settled submissions belong in history
			DELETE FROM history WHERE phase NOT IN ('succeeded', 'failed');
		`,
		Down: `
			-- Cannot restore deleted data
		`,
	},
	{
		Version: 3,
		Name:    "Add composite index for newest-first listing",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_history_timestamp_id ON history(timestamp DESC, id DESC);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_history_timestamp_id;
		`,
	},
}

// InitSchema creates all tables required across all modules
// This must be called before running migrations to ensure all tables exist
func InitSchema(db *sql.DB) error {
	schema := `
	-- Submission history
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT,
		timestamp DATETIME NOT NULL,
		url TEXT NOT NULL,
		video_id TEXT,
		phase TEXT NOT NULL,
		summary TEXT,
		warning TEXT,
		source TEXT,
		error TEXT,
		error_kind TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_history_url ON history(url);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// Run executes all pending migrations on the database
func Run(db *sql.DB) error {
	// Initialize schema first to ensure all tables exist
	if err := InitSchema(db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if currentVersion > LatestVersion() {
		return fmt.Errorf("history database schema version %d is newer than this ytsum supports (%d)", currentVersion, LatestVersion())
	}

	for _, migration := range AllMigrations {
		if migration.Version <= currentVersion {
			continue
		}

		// Each migration and its bookkeeping row commit together
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// GetCurrentVersion returns the current database schema version
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM schema_migrations
	`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return version, nil
}

// LatestVersion returns the version the schema reaches after Run
func LatestVersion() int {
	if len(AllMigrations) == 0 {
		return 0
	}
	return AllMigrations[len(AllMigrations)-1].Version
}
