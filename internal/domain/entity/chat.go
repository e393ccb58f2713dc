package entity

// Chat represents a registered Telegram chat that owns zero or more tracked links.
// Links are cascade-deleted with their chat. The scan core only enumerates chats;
// registration and deletion belong to the chat-management API.
type Chat struct {
	ID         int64
	Registered bool
}
