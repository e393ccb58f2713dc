// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Link and Chat, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Link represents a tracked subscription: one chat following one external resource.
// Tags and Filters are free-form metadata attached by the link-management API;
// their semantics are opaque to the scan core. LastUpdated is the timestamp of
// the last confirmed update (nil if the link has never produced one).
//
// Invariant: (ChatID, URL) pairs are unique, enforced by the persistence layer.
type Link struct {
	ID          int64
	ChatID      int64
	URL         string
	Tags        []string
	Filters     []string
	LastUpdated *time.Time
}

// Validate validates the Link entity fields.
func (l *Link) Validate() error {
	if err := ValidateChatID(l.ChatID); err != nil {
		return err
	}
	return ValidateTrackedURL(l.URL)
}
