// Package repository defines the persistence interfaces consumed by the scan core.
// Concrete adapters live under internal/infra/adapter/persistence.
package repository

import (
	"context"
	"time"

	"linktracker/internal/domain/entity"
)

// LinkRepository provides access to tracked links. The scan orchestrator reads
// a chat's links and stamps last-updated timestamps; link creation and removal
// belong to the link-management API but share the same backend.
type LinkRepository interface {
	// GetLinks returns all links tracked by the given chat.
	// A negative chatID is rejected with a validation error.
	GetLinks(ctx context.Context, chatID int64) ([]*entity.Link, error)

	// SetLastUpdated overwrites the last-updated timestamp of a link.
	// Returns entity.ErrNotFound if the link no longer exists.
	SetLastUpdated(ctx context.Context, linkID int64, t time.Time) error

	// AddLink registers a new subscription for a chat.
	// Returns entity.ErrNotFound if the chat is not registered and
	// entity.ErrDuplicateLink if the (chat, URL) pair already exists.
	AddLink(ctx context.Context, link *entity.Link) (*entity.Link, error)

	// RemoveLink deletes a chat's subscription by URL and returns the removed link.
	// Returns entity.ErrNotFound if no such subscription exists.
	RemoveLink(ctx context.Context, chatID int64, url string) (*entity.Link, error)
}
