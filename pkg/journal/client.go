// Package journal talks to the searchable event journal that crawlers report
// into. It carries the search surface used for crawl health checks and the
// publish surface used for error reports and crawl summaries.
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// Entry is one journal event.
type Entry struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// SearchResponse is the journal's answer to a search query.
type SearchResponse struct {
	TotalResults int     `json:"total_results"`
	Results      []Entry `json:"results"`
}

// Client is the journal surface this service depends on. The journal itself
// is an external collaborator; tests substitute fakes.
type Client interface {
	// SearchMostRecent runs a tag-filtered, descending-time, limit-1 search.
	SearchMostRecent(ctx context.Context, journalID, query string) (*SearchResponse, error)
	// CreateEntry appends an entry to a journal.
	CreateEntry(ctx context.Context, journalID string, entry Entry) error
}

// HTTPClient implements Client over the journal's HTTP API with bearer-token
// auth. It is stateless and safe for concurrent use.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(logger *zap.Logger, baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// SearchMostRecent runs a limit-1 descending search so the single most recent
// matching entry comes back, if any.
func (c *HTTPClient) SearchMostRecent(ctx context.Context, journalID, query string) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", "1")
	q.Set("content", "false")
	q.Set("order", "desc")

	endpoint := fmt.Sprintf("%s/journals/%s/search?%s", c.baseURL, journalID, q.Encode())

	var out SearchResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEntry appends an entry to the journal.
func (c *HTTPClient) CreateEntry(ctx context.Context, journalID string, entry Entry) error {
	endpoint := fmt.Sprintf("%s/journals/%s/entries", c.baseURL, journalID)
	return c.doJSON(ctx, http.MethodPost, endpoint, entry, nil)
}

// doJSON sends a request with bearer auth and optionally decodes the JSON
// response into out.
func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal journal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build journal request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("journal request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug("Journal returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("endpoint", endpoint))
		return fmt.Errorf("journal returned status %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode journal response: %w", err)
		}
	}
	return nil
}
