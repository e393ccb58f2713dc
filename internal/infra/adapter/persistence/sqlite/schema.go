package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS chats (
    id INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS links (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    chat_id      INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
    url          TEXT NOT NULL,
    tags         TEXT NOT NULL DEFAULT '[]',
    filters      TEXT NOT NULL DEFAULT '[]',
    last_updated TIMESTAMP,
    UNIQUE (chat_id, url)
);

CREATE INDEX IF NOT EXISTS idx_links_chat_id ON links(chat_id);
`

// Migrate creates the schema if it does not exist. Postgres deployments run
// external migrations instead; SQLite is self-contained.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
