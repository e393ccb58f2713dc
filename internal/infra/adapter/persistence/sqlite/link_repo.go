package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"linktracker/internal/domain/entity"
	"linktracker/internal/repository"
)

type LinkRepo struct{ db *sql.DB }

func NewLinkRepo(db *sql.DB) repository.LinkRepository {
	return &LinkRepo{db: db}
}

func scanLink(rows *sql.Rows) (*entity.Link, error) {
	var link entity.Link
	var tagsJSON, filtersJSON string
	if err := rows.Scan(
		&link.ID, &link.ChatID, &link.URL, &tagsJSON, &filtersJSON, &link.LastUpdated,
	); err != nil {
		return nil, err
	}
	if err := decodeMeta(&link, tagsJSON, filtersJSON); err != nil {
		return nil, err
	}
	return &link, nil
}

func decodeMeta(link *entity.Link, tagsJSON, filtersJSON string) error {
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &link.Tags); err != nil {
			return fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if filtersJSON != "" {
		if err := json.Unmarshal([]byte(filtersJSON), &link.Filters); err != nil {
			return fmt.Errorf("unmarshal filters: %w", err)
		}
	}
	return nil
}

func encodeMeta(link *entity.Link) (tagsJSON, filtersJSON string, err error) {
	tags := link.Tags
	if tags == nil {
		tags = []string{}
	}
	filters := link.Filters
	if filters == nil {
		filters = []string{}
	}
	tb, err := json.Marshal(tags)
	if err != nil {
		return "", "", fmt.Errorf("marshal tags: %w", err)
	}
	fb, err := json.Marshal(filters)
	if err != nil {
		return "", "", fmt.Errorf("marshal filters: %w", err)
	}
	return string(tb), string(fb), nil
}

func (repo *LinkRepo) GetLinks(ctx context.Context, chatID int64) ([]*entity.Link, error) {
	if err := entity.ValidateChatID(chatID); err != nil {
		return nil, fmt.Errorf("GetLinks: %w", err)
	}

	const query = `
SELECT id, chat_id, url, tags, filters, last_updated
FROM links
WHERE chat_id = ?
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("GetLinks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	links := make([]*entity.Link, 0, 16)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("GetLinks: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (repo *LinkRepo) SetLastUpdated(ctx context.Context, linkID int64, t time.Time) error {
	const query = `UPDATE links SET last_updated = ? WHERE id = ?`
	res, err := repo.db.ExecContext(ctx, query, t.UTC(), linkID)
	if err != nil {
		return fmt.Errorf("SetLastUpdated: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetLastUpdated: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("SetLastUpdated link %d: %w", linkID, entity.ErrNotFound)
	}
	return nil
}

func (repo *LinkRepo) AddLink(ctx context.Context, link *entity.Link) (*entity.Link, error) {
	if err := link.Validate(); err != nil {
		return nil, fmt.Errorf("AddLink: %w", err)
	}

	var exists int
	err := repo.db.QueryRowContext(ctx,
		`SELECT 1 FROM chats WHERE id = ?`, link.ChatID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("AddLink chat %d: %w", link.ChatID, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("AddLink: %w", err)
	}

	var dup int64
	err = repo.db.QueryRowContext(ctx,
		`SELECT id FROM links WHERE chat_id = ? AND url = ?`, link.ChatID, link.URL).Scan(&dup)
	if err == nil {
		return nil, fmt.Errorf("AddLink %s: %w", link.URL, entity.ErrDuplicateLink)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("AddLink: %w", err)
	}

	tagsJSON, filtersJSON, err := encodeMeta(link)
	if err != nil {
		return nil, fmt.Errorf("AddLink: %w", err)
	}

	created := *link
	if created.LastUpdated == nil {
		// baseline stamp: a new link tracks from its creation time, so the
		// first scan pass can detect activity instead of skipping it forever
		now := time.Now().UTC()
		created.LastUpdated = &now
	}

	const query = `
INSERT INTO links (chat_id, url, tags, filters, last_updated)
VALUES (?, ?, ?, ?, ?)`
	res, err := repo.db.ExecContext(ctx, query,
		created.ChatID, created.URL, tagsJSON, filtersJSON, created.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("AddLink: %w", err)
	}
	if created.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("AddLink: %w", err)
	}
	return &created, nil
}

func (repo *LinkRepo) RemoveLink(ctx context.Context, chatID int64, url string) (*entity.Link, error) {
	if err := entity.ValidateChatID(chatID); err != nil {
		return nil, fmt.Errorf("RemoveLink: %w", err)
	}

	const selectQuery = `
SELECT id, chat_id, url, tags, filters, last_updated
FROM links
WHERE chat_id = ? AND url = ?`
	rows, err := repo.db.QueryContext(ctx, selectQuery, chatID, url)
	if err != nil {
		return nil, fmt.Errorf("RemoveLink: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("RemoveLink: %w", err)
		}
		return nil, fmt.Errorf("RemoveLink %s: %w", url, entity.ErrNotFound)
	}
	link, err := scanLink(rows)
	if err != nil {
		return nil, fmt.Errorf("RemoveLink: %w", err)
	}
	_ = rows.Close()

	if _, err := repo.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, link.ID); err != nil {
		return nil, fmt.Errorf("RemoveLink: %w", err)
	}
	return link, nil
}
