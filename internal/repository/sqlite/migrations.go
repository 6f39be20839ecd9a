package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations contains all database migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			CREATE TABLE IF NOT EXISTS projects (
				id TEXT PRIMARY KEY,
				provider_id TEXT NOT NULL,
				name TEXT NOT NULL,
				client TEXT NOT NULL DEFAULT '',
				agency TEXT NOT NULL DEFAULT '',
				brand TEXT NOT NULL DEFAULT '',
				product TEXT NOT NULL DEFAULT '',
				client_type TEXT NOT NULL DEFAULT '',
				tolerance_minutes INTEGER NOT NULL DEFAULT 0,
				report_types TEXT NOT NULL DEFAULT '[]',
				recipients TEXT NOT NULL DEFAULT '[]',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_projects_updated_at ON projects(updated_at);

			CREATE TABLE IF NOT EXISTS materials (
				project_id TEXT NOT NULL,
				acr_id TEXT NOT NULL,
				name TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				active_dates TEXT NOT NULL DEFAULT '[]',
				times TEXT NOT NULL DEFAULT '[]',
				streams TEXT NOT NULL DEFAULT '[]',
				conflicts TEXT NOT NULL DEFAULT '[]',
				back_to_back TEXT NOT NULL DEFAULT '[]',
				position INTEGER NOT NULL,
				PRIMARY KEY (project_id, acr_id),
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);

			CREATE TABLE IF NOT EXISTS stream_catalog (
				project_id TEXT NOT NULL,
				stream_id TEXT NOT NULL,
				name TEXT NOT NULL DEFAULT '',
				url TEXT NOT NULL DEFAULT '',
				position INTEGER NOT NULL,
				PRIMARY KEY (project_id, stream_id),
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);
		`,
	},
}

// Migrate applies all pending migrations to the database
func Migrate(db *sql.DB) error {
	current, err := getCurrentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			migration.Version, migration.Name, time.Now(),
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

// getCurrentVersion returns the current schema version
func getCurrentVersion(db *sql.DB) (int, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var version int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query version: %w", err)
	}
	return version, nil
}
