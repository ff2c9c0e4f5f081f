package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"subtext/internal/chunk"
	"subtext/internal/config"
	"subtext/internal/services"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	errorBodyLimit     = 4096
)

// Config describes the index client configuration.
type Config struct {
	URL            string
	Index          string
	Username       string
	Password       string
	TimeoutSeconds int
	HTTPClient     *http.Client
}

// FromSettings copies the index tunables out of the main configuration.
func FromSettings(settings config.Index) Config {
	return Config{
		URL:            settings.URL,
		Index:          settings.Name,
		Username:       settings.Username,
		Password:       settings.Password,
		TimeoutSeconds: settings.TimeoutSeconds,
	}
}

// Client wraps the search index REST API.
type Client struct {
	baseURL  *url.URL
	index    string
	username string
	password string
	http     *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.URL)
	if base == "" {
		return nil, errors.New("search: index url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("search: parse index url: %w", err)
	}
	index := strings.TrimSpace(cfg.Index)
	if index == "" {
		return nil, errors.New("search: index name is required")
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:  baseURL,
		index:    index,
		username: strings.TrimSpace(cfg.Username),
		password: cfg.Password,
		http:     client,
	}, nil
}

// ItemFailure describes one document the index rejected.
type ItemFailure struct {
	ID     string
	Status int
	Type   string
	Reason string
}

// BulkError reports the documents rejected by a bulk request.
type BulkError struct {
	Failed []ItemFailure
}

func (e *BulkError) Error() string {
	if len(e.Failed) == 0 {
		return "search: bulk request rejected"
	}
	first := e.Failed[0]
	return fmt.Sprintf("search: bulk rejected %d documents (first %s: %s)", len(e.Failed), first.ID, first.Reason)
}

// Bulk indexes the supplied chunks in a single request. Chunk IDs double
// as document IDs, so re-indexing a track overwrites its previous
// documents. A response with rejected items returns a BulkError listing
// every failed document.
func (c *Client) Bulk(ctx context.Context, chunks []chunk.Chunk) error {
	if c == nil {
		return errors.New("search: client is nil")
	}
	if len(chunks) == 0 {
		return nil
	}

	var body bytes.Buffer
	for _, doc := range chunks {
		action := map[string]any{
			"index": map[string]string{
				"_index": c.index,
				"_id":    doc.ID,
			},
		}
		if err := json.NewEncoder(&body).Encode(action); err != nil {
			return services.Wrap(services.ErrIndexFailure, "search", "bulk", "encode action", err)
		}
		if err := json.NewEncoder(&body).Encode(doc); err != nil {
			return services.Wrap(services.ErrIndexFailure, "search", "bulk", "encode document", err)
		}
	}

	endpoint := c.baseURL.JoinPath("_bulk")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), &body)
	if err != nil {
		return services.Wrap(services.ErrIndexFailure, "search", "bulk", "build request", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	c.applyAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrIndexFailure, "search", "bulk", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return services.Wrap(services.ErrIndexFailure, "search", "bulk", httpFailure(resp), nil)
	}

	var payload bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return services.Wrap(services.ErrIndexFailure, "search", "bulk", "decode response", err)
	}
	if !payload.Errors {
		return nil
	}

	bulkErr := &BulkError{}
	for _, item := range payload.Items {
		for _, result := range item {
			if result.Error == nil && result.Status < 400 {
				continue
			}
			failure := ItemFailure{ID: result.ID, Status: result.Status}
			if result.Error != nil {
				failure.Type = result.Error.Type
				failure.Reason = result.Error.Reason
			}
			bulkErr.Failed = append(bulkErr.Failed, failure)
		}
	}
	return services.Wrap(services.ErrIndexFailure, "search", "bulk", "", bulkErr)
}

// DeleteByVideo removes every chunk document belonging to the video and
// returns how many documents the index deleted.
func (c *Client) DeleteByVideo(ctx context.Context, videoID string) (int64, error) {
	if c == nil {
		return 0, errors.New("search: client is nil")
	}
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return 0, errors.New("search: video id is required")
	}

	query := map[string]any{
		"query": map[string]any{
			"term": map[string]string{"video_id": videoID},
		},
	}
	encoded, err := json.Marshal(query)
	if err != nil {
		return 0, services.Wrap(services.ErrIndexFailure, "search", "delete", "encode query", err)
	}

	endpoint := c.baseURL.JoinPath(c.index, "_delete_by_query")
	endpoint.RawQuery = url.Values{"refresh": {"true"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(encoded))
	if err != nil {
		return 0, services.Wrap(services.ErrIndexFailure, "search", "delete", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrIndexFailure, "search", "delete", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, services.Wrap(services.ErrIndexFailure, "search", "delete", httpFailure(resp), nil)
	}

	var payload struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, services.Wrap(services.ErrIndexFailure, "search", "delete", "decode response", err)
	}
	return payload.Deleted, nil
}

// Ping verifies the index endpoint answers at all.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("search: client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrIndexFailure, "search", "ping", "build request", err)
	}
	c.applyAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrIndexFailure, "search", "ping", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return services.Wrap(services.ErrIndexFailure, "search", "ping", httpFailure(resp), nil)
	}
	return nil
}

// IndexName reports the index documents are written to.
func (c *Client) IndexName() string {
	if c == nil {
		return ""
	}
	return c.index
}

func (c *Client) applyAuth(req *http.Request) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

func httpFailure(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		return fmt.Sprintf("http %d (%s)", resp.StatusCode, resp.Status)
	}
	return fmt.Sprintf("http %d: %s", resp.StatusCode, detail)
}

type bulkResponse struct {
	Took   int64                       `json:"took"`
	Errors bool                        `json:"errors"`
	Items  []map[string]bulkItemResult `json:"items"`
}

type bulkItemResult struct {
	ID     string         `json:"_id"`
	Status int            `json:"status"`
	Error  *bulkItemError `json:"error"`
}

type bulkItemError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
