// Package sqlite implements the repository interfaces on SQLite using raw SQL
// over database/sql with the modernc.org/sqlite driver. It is the lightweight
// backend used for local development and tests; postgres is the production one.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"linktracker/internal/repository"
)

type ChatRepo struct{ db *sql.DB }

func NewChatRepo(db *sql.DB) repository.ChatRepository {
	return &ChatRepo{db: db}
}

func (repo *ChatRepo) GetChats(ctx context.Context, limit, offset int) ([]int64, error) {
	const query = `
SELECT id
FROM chats
ORDER BY id ASC
LIMIT ? OFFSET ?`
	rows, err := repo.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("GetChats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("GetChats: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (repo *ChatRepo) RegisterChat(ctx context.Context, chatID int64) error {
	const query = `INSERT OR IGNORE INTO chats (id) VALUES (?)`
	if _, err := repo.db.ExecContext(ctx, query, chatID); err != nil {
		return fmt.Errorf("RegisterChat: %w", err)
	}
	return nil
}

func (repo *ChatRepo) DeleteChat(ctx context.Context, chatID int64) error {
	// foreign_keys pragma is enabled by db.Open, so links cascade
	const query = `DELETE FROM chats WHERE id = ?`
	if _, err := repo.db.ExecContext(ctx, query, chatID); err != nil {
		return fmt.Errorf("DeleteChat: %w", err)
	}
	return nil
}
