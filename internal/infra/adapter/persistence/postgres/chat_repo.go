// Package postgres implements the repository interfaces on PostgreSQL using
// raw SQL over database/sql with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"linktracker/internal/observability/metrics"
	"linktracker/internal/repository"
)

type ChatRepo struct{ db *sql.DB }

func NewChatRepo(db *sql.DB) repository.ChatRepository {
	return &ChatRepo{db: db}
}

func (repo *ChatRepo) GetChats(ctx context.Context, limit, offset int) ([]int64, error) {
	defer func(start time.Time) { metrics.RecordDBQuery("get_chats", time.Since(start)) }(time.Now())

	const query = `
SELECT id
FROM chats
ORDER BY id ASC
LIMIT $1 OFFSET $2`
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
	const query = `
INSERT INTO chats (id)
VALUES ($1)
ON CONFLICT (id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, chatID); err != nil {
		return fmt.Errorf("RegisterChat: %w", err)
	}
	return nil
}

func (repo *ChatRepo) DeleteChat(ctx context.Context, chatID int64) error {
	// links are removed by ON DELETE CASCADE
	const query = `DELETE FROM chats WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, chatID); err != nil {
		return fmt.Errorf("DeleteChat: %w", err)
	}
	return nil
}
