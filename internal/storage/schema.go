package storage

import (
	"database/sql"
	"fmt"
)

// initSchema creates all necessary tables and indexes.
func initSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			chat_id INTEGER PRIMARY KEY,
			username TEXT,
			semester INTEGER NOT NULL DEFAULT 2,
			subject_kind TEXT,
			subject_name TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_subject ON users(subject_kind, subject_name);`,

		`CREATE TABLE IF NOT EXISTS subjects (
			kind TEXT CHECK(kind IN ('group', 'teacher')) NOT NULL,
			name TEXT NOT NULL,
			semester INTEGER NOT NULL,
			external_id TEXT NOT NULL,
			PRIMARY KEY (kind, name, semester)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_subjects_lookup ON subjects(kind, semester, name);`,

		`CREATE TABLE IF NOT EXISTS timetables (
			subject_kind TEXT NOT NULL,
			subject_name TEXT NOT NULL,
			semester INTEGER NOT NULL,
			schedule TEXT NOT NULL,
			last_updated INTEGER NOT NULL,
			PRIMARY KEY (subject_kind, subject_name, semester)
		);`,

		`CREATE TABLE IF NOT EXISTS render_cache (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			cached_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_render_cache_cached_at ON render_cache(cached_at);`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
