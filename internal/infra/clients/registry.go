package clients

import (
	"fmt"
	"net/url"
	"strings"
)

// Registry resolves tracked URLs to the service client responsible for them.
type Registry struct {
	byHost map[string]Client
}

// NewRegistry builds a registry with all supported service clients.
func NewRegistry(cfg Settings) *Registry {
	return &Registry{
		byHost: map[string]Client{
			"github.com":        NewGitHubClient(cfg),
			"stackoverflow.com": NewStackOverflowClient(cfg),
		},
	}
}

// Resolve returns the client for the URL's host. Unknown hosts yield
// ErrUnsupportedService.
func (r *Registry) Resolve(rawURL string) (Client, *url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("Resolve: %w", err)
	}

	host := strings.ToLower(u.Hostname())
	client, ok := r.byHost[host]
	if !ok {
		return nil, nil, fmt.Errorf("Resolve %q: %w", host, ErrUnsupportedService)
	}
	return client, u, nil
}
