package notify

import (
	"fmt"
	"strings"

	"linktracker/internal/domain/entity"
)

const (
	digestDateLayout = "2006-01-02 15:04"
	separatorWidth   = 50
)

// RenderUpdate formats one update event as a digest block.
func RenderUpdate(event *entity.UpdateEvent) string {
	return fmt.Sprintf(
		"Описание:  %s\nЗаголовок: *%s*\nАвтор:     %s\nДата:      %s\nОписание:  %s\n",
		event.Description,
		event.Title,
		event.Username,
		event.CreatedAt.Format(digestDateLayout),
		event.Preview,
	)
}

// RenderDigest renders each update event as its own digest entry, separator
// line included, preserving input order. The wire payload carries one entry
// per event; the consumer decides how to join them.
func RenderDigest(events []*entity.UpdateEvent) []string {
	separator := strings.Repeat("=", separatorWidth)

	entries := make([]string, 0, len(events))
	for _, event := range events {
		entries = append(entries, RenderUpdate(event)+separator)
	}
	return entries
}
