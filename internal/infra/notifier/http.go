// Package notifier provides the HTTP transport for digest delivery: a direct
// POST callback to the downstream bot service.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"linktracker/internal/domain/entity"
)

const (
	updatesPath = "/updates"
	digestPath  = "/digest"
)

// HTTPConfig contains configuration for the HTTP notification transport.
type HTTPConfig struct {
	// BaseURL is the bot service endpoint, without a trailing slash
	BaseURL string

	// Timeout is the HTTP request timeout for delivery calls
	Timeout time.Duration
}

// HTTPTransport delivers digest payloads by POSTing JSON to the bot service.
type HTTPTransport struct {
	config      HTTPConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewHTTPTransport creates an HTTP transport with the specified configuration.
// Deliveries are limited to 5 requests per second with a burst of 10.
func NewHTTPTransport(config HTTPConfig) *HTTPTransport {
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	return &HTTPTransport{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(5.0, 10),
	}
}

// Name implements the transport contract.
func (t *HTTPTransport) Name() string { return "http" }

// PublishUpdate POSTs a plain-update payload to the updates endpoint.
func (t *HTTPTransport) PublishUpdate(ctx context.Context, digest *entity.DigestUpdate) error {
	return t.post(ctx, updatesPath, digest)
}

// PublishDigest POSTs a rendered digest payload to the digest endpoint.
func (t *HTTPTransport) PublishDigest(ctx context.Context, digest *entity.DigestUpdate) error {
	return t.post(ctx, digestPath, digest)
}

func (t *HTTPTransport) post(ctx context.Context, path string, digest *entity.DigestUpdate) error {
	if err := t.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}

	jsonData, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("marshal digest payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.BaseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("bot service returned %d: %s", resp.StatusCode, string(body))
}
