package repository

import "context"

// ChatRepository provides paginated enumeration of registered chats.
type ChatRepository interface {
	// GetChats returns up to limit chat identifiers starting at offset,
	// in ascending identifier order. An empty slice means no more pages.
	GetChats(ctx context.Context, limit, offset int) ([]int64, error)

	// RegisterChat records a chat. Registering an existing chat is a no-op.
	RegisterChat(ctx context.Context, chatID int64) error

	// DeleteChat removes a chat and, by cascade, all of its tracked links.
	DeleteChat(ctx context.Context, chatID int64) error
}
