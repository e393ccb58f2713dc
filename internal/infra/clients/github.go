package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"linktracker/internal/domain/entity"
	"linktracker/internal/resilience/circuitbreaker"
	"linktracker/internal/resilience/retry"
)

const githubAcceptHeader = "application/vnd.github+json"

// githubEvent is the subset of the GitHub events API response the adapter needs.
type githubEvent struct {
	Type  string `json:"type"`
	Actor struct {
		Login string `json:"login"`
	} `json:"actor"`
	Payload struct {
		Action      string `json:"action"`
		PullRequest *struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		} `json:"pull_request"`
		Issue *struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		} `json:"issue"`
	} `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// GitHubClient checks repositories for new pull requests and issues via the
// GitHub events API.
type GitHubClient struct {
	apiURL         string
	token          string
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewGitHubClient creates a GitHub adapter from the given settings.
func NewGitHubClient(cfg Settings) *GitHubClient {
	return &GitHubClient{
		apiURL:         strings.TrimSuffix(cfg.GitHubAPIURL, "/"),
		token:          cfg.GitHubToken,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.GitHubAPIConfig()),
		retryConfig:    retry.ServiceClientConfig(),
	}
}

// CheckUpdates implements the Client contract for github.com URLs.
func (c *GitHubClient) CheckUpdates(ctx context.Context, u *url.URL, lastCheck *time.Time) (*entity.UpdateEvent, error) {
	if lastCheck == nil {
		// first-ever check establishes a baseline, no notification
		return nil, nil
	}

	owner, repo, ok := splitRepoPath(u.Path)
	if !ok {
		slog.Warn("github URL has no owner/repo path, skipping",
			slog.String("url", u.String()))
		return nil, nil
	}

	events, err := c.fetchEvents(ctx, owner, repo)
	if err != nil {
		return nil, classifyUpstreamError(err, "github", u.String())
	}

	latest := latestRelevantEvent(events)
	if latest == nil || !latest.CreatedAt.After(*lastCheck) {
		return nil, nil
	}

	return mapGitHubEvent(latest, u), nil
}

// splitRepoPath extracts owner and repo from the first two path segments.
func splitRepoPath(path string) (owner, repo string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// latestRelevantEvent returns the newest pull-request or issue creation event.
func latestRelevantEvent(events []githubEvent) *githubEvent {
	var latest *githubEvent
	for i := range events {
		ev := &events[i]
		if ev.Type != "PullRequestEvent" && ev.Type != "IssuesEvent" {
			continue
		}
		if latest == nil || ev.CreatedAt.After(latest.CreatedAt) {
			latest = ev
		}
	}
	return latest
}

func mapGitHubEvent(ev *githubEvent, u *url.URL) *entity.UpdateEvent {
	var description, title, preview string
	switch ev.Type {
	case "PullRequestEvent":
		description = fmt.Sprintf("Новый Pull Request в %s", u.String())
		if ev.Payload.PullRequest != nil {
			title = ev.Payload.PullRequest.Title
			preview = ev.Payload.PullRequest.Body
		}
	case "IssuesEvent":
		description = fmt.Sprintf("Новый Issue в %s", u.String())
		if ev.Payload.Issue != nil {
			title = ev.Payload.Issue.Title
			preview = ev.Payload.Issue.Body
		}
	}
	return entity.NewUpdateEvent(description, title, ev.Actor.Login, ev.CreatedAt, preview)
}

// fetchEvents retrieves the repository event list through retry and circuit breaker.
func (c *GitHubClient) fetchEvents(ctx context.Context, owner, repo string) ([]githubEvent, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/events", c.apiURL, url.PathEscape(owner), url.PathEscape(repo))

	var events []githubEvent
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx, endpoint)
		})
		if err != nil {
			return err
		}
		events = result.([]githubEvent)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return events, nil
}

func (c *GitHubClient) doFetch(ctx context.Context, endpoint string) ([]githubEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", githubAcceptHeader)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var events []githubEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode github events: %w", err)
	}
	return events, nil
}

// classifyUpstreamError maps a transport error to the client error contract:
// 404 and timeouts are raised as distinct categories, everything else is
// swallowed as "no update found" to keep the scan loop resilient.
func classifyUpstreamError(err error, service, trackedURL string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s resource %s: %w", service, trackedURL, ErrResourceNotFound)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s request for %s: %w", service, trackedURL, ErrTimeout)
	}

	slog.Warn("upstream check failed, treating as no update",
		slog.String("service", service),
		slog.String("url", trackedURL),
		slog.Any("error", err))
	return nil
}
