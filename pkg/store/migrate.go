package store

import "database/sql"

// Migrate bootstraps the schema. Statements are idempotent; running against
// an existing database is a no-op.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(26) PRIMARY KEY,
			step INT NOT NULL,
			state JSON NOT NULL,
			saved_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS timeline_entries (
			id VARCHAR(26) PRIMARY KEY,
			session_id VARCHAR(26) NOT NULL,
			at DATETIME(3) NOT NULL,
			actor VARCHAR(16) NOT NULL,
			label VARCHAR(255) NOT NULL,
			details TEXT,
			INDEX idx_timeline_session (session_id, at)
		)`,
		`CREATE TABLE IF NOT EXISTS entitlements (
			user_id VARCHAR(64) PRIMARY KEY,
			in_person_pack BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
