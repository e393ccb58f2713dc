package db

import (
	"database/sql"
)

// MigrateUp creates the postgres schema. SQLite deployments apply their own
// self-contained schema in the sqlite adapter instead.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS chats (
    id BIGINT PRIMARY KEY
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS links (
    id           BIGSERIAL PRIMARY KEY,
    chat_id      BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
    url          TEXT NOT NULL,
    tags         JSONB NOT NULL DEFAULT '[]',
    filters      JSONB NOT NULL DEFAULT '[]',
    last_updated TIMESTAMPTZ,
    UNIQUE (chat_id, url)
)`); err != nil {
		return err
	}

	indexes := []string{
		// GetLinks filters by chat_id on every scan pass
		`CREATE INDEX IF NOT EXISTS idx_links_chat_id ON links(chat_id)`,
		// Scheduler-style queries that pick stale links first
		`CREATE INDEX IF NOT EXISTS idx_links_last_updated ON links(last_updated ASC NULLS FIRST)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown rolls back the schema in reverse order of creation.
// Use with caution: this deletes all tracked chats and links.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_links_last_updated`,
		`DROP INDEX IF EXISTS idx_links_chat_id`,
		`DROP TABLE IF EXISTS links CASCADE`,
		`DROP TABLE IF EXISTS chats CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
