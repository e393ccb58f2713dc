package entity

import (
	"fmt"
	"net/url"
)

// ValidateChatID checks that a chat identifier is non-negative.
func ValidateChatID(chatID int64) error {
	if chatID < 0 {
		return &ValidationError{
			Field:   "chat_id",
			Message: fmt.Sprintf("must be >= 0, got %d", chatID),
		}
	}
	return nil
}

// ValidateTrackedURL checks that a tracked URL is an absolute http(s) URL with a host.
func ValidateTrackedURL(raw string) error {
	if raw == "" {
		return &ValidationError{Field: "url", Message: "must not be empty"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("malformed URL: %v", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return &ValidationError{Field: "url", Message: "missing host"}
	}
	return nil
}
