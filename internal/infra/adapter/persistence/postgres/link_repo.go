package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"linktracker/internal/domain/entity"
	"linktracker/internal/observability/metrics"
	"linktracker/internal/repository"
)

type LinkRepo struct{ db *sql.DB }

func NewLinkRepo(db *sql.DB) repository.LinkRepository {
	return &LinkRepo{db: db}
}

// scanLink is a helper function to scan a link row including tags and filters
func scanLink(rows *sql.Rows) (*entity.Link, error) {
	var link entity.Link
	var tagsJSON, filtersJSON []byte
	if err := rows.Scan(
		&link.ID, &link.ChatID, &link.URL, &tagsJSON, &filtersJSON, &link.LastUpdated,
	); err != nil {
		return nil, err
	}
	if err := unmarshalLinkMeta(&link, tagsJSON, filtersJSON); err != nil {
		return nil, err
	}
	return &link, nil
}

func unmarshalLinkMeta(link *entity.Link, tagsJSON, filtersJSON []byte) error {
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &link.Tags); err != nil {
			return fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if len(filtersJSON) > 0 {
		if err := json.Unmarshal(filtersJSON, &link.Filters); err != nil {
			return fmt.Errorf("unmarshal filters: %w", err)
		}
	}
	return nil
}

func marshalLinkMeta(link *entity.Link) (tagsJSON, filtersJSON []byte, err error) {
	tags := link.Tags
	if tags == nil {
		tags = []string{}
	}
	filters := link.Filters
	if filters == nil {
		filters = []string{}
	}
	if tagsJSON, err = json.Marshal(tags); err != nil {
		return nil, nil, fmt.Errorf("marshal tags: %w", err)
	}
	if filtersJSON, err = json.Marshal(filters); err != nil {
		return nil, nil, fmt.Errorf("marshal filters: %w", err)
	}
	return tagsJSON, filtersJSON, nil
}

func (repo *LinkRepo) GetLinks(ctx context.Context, chatID int64) ([]*entity.Link, error) {
	if err := entity.ValidateChatID(chatID); err != nil {
		return nil, fmt.Errorf("GetLinks: %w", err)
	}
	defer func(start time.Time) { metrics.RecordDBQuery("get_links", time.Since(start)) }(time.Now())

	const query = `
SELECT id, chat_id, url, tags, filters, last_updated
FROM links
WHERE chat_id = $1
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
	defer func(start time.Time) { metrics.RecordDBQuery("set_last_updated", time.Since(start)) }(time.Now())

	const query = `UPDATE links SET last_updated = $1 WHERE id = $2`
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
		`SELECT 1 FROM chats WHERE id = $1`, link.ChatID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("AddLink chat %d: %w", link.ChatID, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("AddLink: %w", err)
	}

	var dup int64
	err = repo.db.QueryRowContext(ctx,
		`SELECT id FROM links WHERE chat_id = $1 AND url = $2`, link.ChatID, link.URL).Scan(&dup)
	if err == nil {
		return nil, fmt.Errorf("AddLink %s: %w", link.URL, entity.ErrDuplicateLink)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("AddLink: %w", err)
	}

	tagsJSON, filtersJSON, err := marshalLinkMeta(link)
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
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err = repo.db.QueryRowContext(ctx, query,
		created.ChatID, created.URL, tagsJSON, filtersJSON, created.LastUpdated,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("AddLink: %w", err)
	}
	return &created, nil
}

func (repo *LinkRepo) RemoveLink(ctx context.Context, chatID int64, url string) (*entity.Link, error) {
	if err := entity.ValidateChatID(chatID); err != nil {
		return nil, fmt.Errorf("RemoveLink: %w", err)
	}

	const query = `
DELETE FROM links
WHERE chat_id = $1 AND url = $2
RETURNING id, chat_id, url, tags, filters, last_updated`
	var link entity.Link
	var tagsJSON, filtersJSON []byte
	err := repo.db.QueryRowContext(ctx, query, chatID, url).Scan(
		&link.ID, &link.ChatID, &link.URL, &tagsJSON, &filtersJSON, &link.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("RemoveLink %s: %w", url, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("RemoveLink: %w", err)
	}
	if err := unmarshalLinkMeta(&link, tagsJSON, filtersJSON); err != nil {
		return nil, fmt.Errorf("RemoveLink: %w", err)
	}
	return &link, nil
}
