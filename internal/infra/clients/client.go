// Package clients provides adapters that translate a tracked URL plus a
// last-check timestamp into an update event via an external service's API.
// Each adapter wraps its HTTP calls with circuit breaker and retry logic.
package clients

import (
	"context"
	"errors"
	"net/url"
	"time"

	"linktracker/internal/domain/entity"
)

// Client checks one external service for updates on a tracked resource.
//
// A nil lastCheck means the link has never been checked: implementations
// return (nil, nil) so the first scan establishes a baseline without
// producing a notification. Earlier adapter generations reported everything
// as new on a nil lastCheck; this behavior is the deliberate replacement.
type Client interface {
	// CheckUpdates returns the most recent relevant update strictly newer
	// than lastCheck, or nil if there is none.
	//
	// Error contract:
	//   - resource gone upstream (404)        → ErrResourceNotFound
	//   - upstream call exceeded its timeout  → ErrTimeout
	//   - malformed resource path, any other upstream failure → (nil, nil),
	//     logged as a warning so one flaky service cannot stall the scan
	CheckUpdates(ctx context.Context, u *url.URL, lastCheck *time.Time) (*entity.UpdateEvent, error)
}

// Sentinel errors returned by client adapters and the registry.
var (
	// ErrUnsupportedService indicates that no adapter exists for a host
	ErrUnsupportedService = errors.New("unsupported service")

	// ErrResourceNotFound indicates the tracked resource no longer exists upstream
	ErrResourceNotFound = errors.New("tracked resource not found")

	// ErrTimeout indicates the upstream call exceeded the configured timeout
	ErrTimeout = errors.New("tracked service request timed out")
)

// Settings holds endpoints and credentials for the service adapters.
type Settings struct {
	GitHubAPIURL        string
	GitHubToken         string // optional bearer token for higher rate limits
	StackOverflowAPIURL string
	StackOverflowAPIKey string // optional key for higher rate limits
	StackOverflowSite   string
	Timeout             time.Duration
}

// DefaultSettings returns the public API endpoints with a 10 second timeout.
func DefaultSettings() Settings {
	return Settings{
		GitHubAPIURL:        "https://api.github.com",
		StackOverflowAPIURL: "https://api.stackexchange.com/2.3",
		StackOverflowSite:   "stackoverflow",
		Timeout:             10 * time.Second,
	}
}
