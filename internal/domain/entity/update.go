package entity

import "time"

// PreviewMaxLen is the maximum rune length of an UpdateEvent preview.
const PreviewMaxLen = 200

// UpdateEvent is the result of a successful freshness check on a tracked
// resource. It is ephemeral: constructed during a scan pass, rendered into a
// digest, and discarded. Never persisted.
type UpdateEvent struct {
	Description string
	Title       string
	Username    string
	CreatedAt   time.Time
	Preview     string
}

// NewUpdateEvent builds an UpdateEvent, truncating the preview to PreviewMaxLen runes.
func NewUpdateEvent(description, title, username string, createdAt time.Time, preview string) *UpdateEvent {
	return &UpdateEvent{
		Description: description,
		Title:       title,
		Username:    username,
		CreatedAt:   createdAt.UTC(),
		Preview:     TruncateRunes(preview, PreviewMaxLen),
	}
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// DigestUpdate is the wire payload delivered to the bot service by both
// notification transports. The ID is non-persistent, derived from the current
// unix time at construction.
type DigestUpdate struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	TgChatID    int64    `json:"tg_chat_id"`
	Updates     []string `json:"updates"`
}

// DigestDescription is the human description attached to every digest payload.
const DigestDescription = "Полученные обновления:"

// NewDigestUpdate wraps rendered update strings into a delivery payload for one chat.
func NewDigestUpdate(chatID int64, updates []string) *DigestUpdate {
	return &DigestUpdate{
		ID:          time.Now().Unix(),
		Description: DigestDescription,
		TgChatID:    chatID,
		Updates:     updates,
	}
}
