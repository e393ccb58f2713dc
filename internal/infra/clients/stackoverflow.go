package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"linktracker/internal/domain/entity"
	"linktracker/internal/resilience/circuitbreaker"
	"linktracker/internal/resilience/retry"
)

// soQuestion is the subset of the StackExchange question response the adapter needs.
type soQuestion struct {
	Title            string `json:"title"`
	LastActivityDate int64  `json:"last_activity_date"`
}

// soItem is a single answer or comment from the StackExchange API.
type soItem struct {
	Owner struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Body         string `json:"body"`
	CreationDate int64  `json:"creation_date"`
}

type soResponse[T any] struct {
	Items []T `json:"items"`
}

// StackOverflowClient checks questions for new answers and comments via the
// StackExchange API.
type StackOverflowClient struct {
	apiURL         string
	apiKey         string
	site           string
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewStackOverflowClient creates a StackOverflow adapter from the given settings.
func NewStackOverflowClient(cfg Settings) *StackOverflowClient {
	return &StackOverflowClient{
		apiURL:         strings.TrimSuffix(cfg.StackOverflowAPIURL, "/"),
		apiKey:         cfg.StackOverflowAPIKey,
		site:           cfg.StackOverflowSite,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.StackOverflowAPIConfig()),
		retryConfig:    retry.ServiceClientConfig(),
	}
}

// CheckUpdates implements the Client contract for stackoverflow.com URLs.
func (c *StackOverflowClient) CheckUpdates(ctx context.Context, u *url.URL, lastCheck *time.Time) (*entity.UpdateEvent, error) {
	if lastCheck == nil {
		// first-ever check establishes a baseline, no notification
		return nil, nil
	}

	questionID, ok := questionIDFromPath(u.Path)
	if !ok {
		slog.Warn("stackoverflow URL has no question id, skipping",
			slog.String("url", u.String()))
		return nil, nil
	}

	question, err := c.fetchQuestion(ctx, questionID)
	if err != nil {
		return nil, classifyUpstreamError(err, "stackoverflow", u.String())
	}

	// last_activity_date covers answers, comments and edits: nothing moved
	// since lastCheck means nothing to report and no further calls needed.
	if !time.Unix(question.LastActivityDate, 0).After(*lastCheck) {
		return nil, nil
	}

	answer, answerErr := c.fetchLatest(ctx, questionID, "answers")
	comment, commentErr := c.fetchLatest(ctx, questionID, "comments")
	if answerErr != nil && commentErr != nil {
		return nil, classifyUpstreamError(answerErr, "stackoverflow", u.String())
	}

	item, description := pickNewest(answer, comment)
	if item == nil {
		return nil, nil
	}
	createdAt := time.Unix(item.CreationDate, 0).UTC()
	if !createdAt.After(*lastCheck) {
		return nil, nil
	}

	return entity.NewUpdateEvent(description, question.Title, item.Owner.DisplayName, createdAt, item.Body), nil
}

// questionIDFromPath extracts the numeric question id from the second-to-last
// path segment of URLs like /questions/123/test-question.
func questionIDFromPath(path string) (int64, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[len(parts)-2], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pickNewest returns the newer of the latest answer and the latest comment,
// along with its digest description. Either argument may be nil.
func pickNewest(answer, comment *soItem) (*soItem, string) {
	switch {
	case answer == nil && comment == nil:
		return nil, ""
	case answer == nil:
		return comment, "Новый комментарий к вопросу"
	case comment == nil:
		return answer, "Новый ответ на вопрос"
	case comment.CreationDate > answer.CreationDate:
		return comment, "Новый комментарий к вопросу"
	default:
		return answer, "Новый ответ на вопрос"
	}
}

func (c *StackOverflowClient) fetchQuestion(ctx context.Context, questionID int64) (*soQuestion, error) {
	endpoint := fmt.Sprintf("%s/questions/%d", c.apiURL, questionID)

	var question *soQuestion
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return doGetItems[soQuestion](ctx, c, endpoint, nil)
		})
		if err != nil {
			return err
		}
		items := result.([]soQuestion)
		if len(items) == 0 {
			return &retry.HTTPError{StatusCode: http.StatusNotFound, Status: "404 question not found"}
		}
		question = &items[0]
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return question, nil
}

// fetchLatest returns the newest item from /questions/{id}/{kind}, or nil when
// the question has none.
func (c *StackOverflowClient) fetchLatest(ctx context.Context, questionID int64, kind string) (*soItem, error) {
	endpoint := fmt.Sprintf("%s/questions/%d/%s", c.apiURL, questionID, kind)
	params := url.Values{
		"sort":   {"creation"},
		"order":  {"desc"},
		"filter": {"withbody"},
	}

	var item *soItem
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return doGetItems[soItem](ctx, c, endpoint, params)
		})
		if err != nil {
			return err
		}
		items := result.([]soItem)
		if len(items) > 0 {
			item = &items[0]
		}
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return item, nil
}

// doGetItems performs one StackExchange API GET and unwraps the items envelope.
func doGetItems[T any](ctx context.Context, c *StackOverflowClient, endpoint string, params url.Values) ([]T, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("site", c.site)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
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
	var envelope soResponse[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode stackexchange response: %w", err)
	}
	return envelope.Items, nil
}
