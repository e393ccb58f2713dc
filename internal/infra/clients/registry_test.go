package clients

import (
	"errors"
	"testing"
)

func TestRegistry_Resolve(t *testing.T) {
	registry := NewRegistry(DefaultSettings())

	t.Run("github URLs resolve to the GitHub client", func(t *testing.T) {
		client, u, err := registry.Resolve("https://github.com/owner/repo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := client.(*GitHubClient); !ok {
			t.Fatalf("expected *GitHubClient, got %T", client)
		}
		if u.Path != "/owner/repo" {
			t.Errorf("parsed path = %q, want %q", u.Path, "/owner/repo")
		}
	})

	t.Run("stackoverflow URLs resolve to the StackOverflow client", func(t *testing.T) {
		client, _, err := registry.Resolve("https://stackoverflow.com/questions/123/test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := client.(*StackOverflowClient); !ok {
			t.Fatalf("expected *StackOverflowClient, got %T", client)
		}
	})

	t.Run("host matching is case-insensitive", func(t *testing.T) {
		client, _, err := registry.Resolve("https://GitHub.com/owner/repo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := client.(*GitHubClient); !ok {
			t.Fatalf("expected *GitHubClient, got %T", client)
		}
	})

	t.Run("unknown host yields ErrUnsupportedService", func(t *testing.T) {
		_, _, err := registry.Resolve("https://gitlab.com/owner/repo")
		if !errors.Is(err, ErrUnsupportedService) {
			t.Fatalf("expected ErrUnsupportedService, got %v", err)
		}
	})

	t.Run("subdomain is not a supported host", func(t *testing.T) {
		_, _, err := registry.Resolve("https://gist.github.com/owner/abc")
		if !errors.Is(err, ErrUnsupportedService) {
			t.Fatalf("expected ErrUnsupportedService, got %v", err)
		}
	})
}
