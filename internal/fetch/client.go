package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"subtext/internal/config"
	"subtext/internal/services"
	"subtext/internal/tracks"
)

const (
	defaultHTTPTimeout    = 30 * time.Second
	defaultMaxAttempts    = 4
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 8 * time.Second
	defaultUserAgent      = "Subtext/dev"
	errorBodyLimit        = 4096
)

// Config captures the runtime settings for the caption downloader.
type Config struct {
	UserAgent        string
	TimeoutSeconds   int
	MaxAttempts      int
	InitialBackoffMS int
	MaxBackoffMS     int
	MinIntervalMS    int
	HTTPClient       *http.Client
}

// FromSettings copies the fetch tunables out of the main configuration.
func FromSettings(settings config.Fetch) Config {
	return Config{
		UserAgent:        settings.UserAgent,
		TimeoutSeconds:   settings.TimeoutSeconds,
		MaxAttempts:      settings.MaxAttempts,
		InitialBackoffMS: settings.InitialBackoffMS,
		MaxBackoffMS:     settings.MaxBackoffMS,
		MinIntervalMS:    settings.MinIntervalMS,
	}
}

// Client downloads caption payloads with retry and request spacing.
type Client struct {
	http        *http.Client
	userAgent   string
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	minInterval time.Duration
	sleeper     func(time.Duration)

	mu       sync.Mutex
	lastSlot time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New constructs a caption downloader from the supplied configuration.
func New(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		http:        cfg.HTTPClient,
		userAgent:   strings.TrimSpace(cfg.UserAgent),
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   time.Duration(cfg.InitialBackoffMS) * time.Millisecond,
		maxDelay:    time.Duration(cfg.MaxBackoffMS) * time.Millisecond,
		minInterval: time.Duration(cfg.MinIntervalMS) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.http == nil {
		client.http = &http.Client{Timeout: timeout}
	}
	if client.userAgent == "" {
		client.userAgent = defaultUserAgent
	}
	if client.maxAttempts < 1 {
		client.maxAttempts = defaultMaxAttempts
	}
	if client.baseDelay <= 0 {
		client.baseDelay = defaultInitialBackoff
	}
	if client.maxDelay <= 0 {
		client.maxDelay = defaultMaxBackoff
	}
	return client
}

type statusError struct {
	StatusCode int
	Status     string
	Body       string
	RetryAfter time.Duration
}

func (e *statusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("fetch: http %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetch: http %d (%s)", e.StatusCode, e.Status)
}

// Fetch downloads the caption payload for the given track reference.
// Server errors and rate limits are retried up to the configured attempt
// budget; missing tracks and other client errors fail on the first try.
func (c *Client) Fetch(ctx context.Context, ref tracks.Ref) ([]byte, error) {
	if c == nil {
		return nil, errors.New("fetch: client is nil")
	}
	if strings.TrimSpace(ref.Fetch.URL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "download", ref.Label()+" has no fetch url", nil)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.pace(ctx); err != nil {
			return nil, c.classify(ref, err)
		}

		payload, err := c.downloadOnce(ctx, ref)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		if !c.retryable(ctx, err) {
			return nil, c.classify(ref, err)
		}
		if attempt == c.maxAttempts {
			break
		}
		if sleepErr := c.sleep(ctx, c.delayFor(err, attempt)); sleepErr != nil {
			return nil, c.classify(ref, sleepErr)
		}
	}

	message := fmt.Sprintf("%s failed after %d attempts", ref.Label(), c.maxAttempts)
	return nil, services.Wrap(services.ErrFetchFailure, "fetch", "download", message, lastErr)
}

func (c *Client) downloadOnce(ctx context.Context, ref tracks.Ref) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.Fetch.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &statusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: read payload: %w", err)
	}
	return payload, nil
}

func (c *Client) classify(ref tracks.Ref, err error) error {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			return services.Wrap(services.ErrTrackUnavailable, "fetch", "download", ref.Label(), err)
		}
		return services.Wrap(services.ErrFetchFailure, "fetch", "download", ref.Label(), err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "fetch", "download", ref.Label(), err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return services.Wrap(services.ErrFetchFailure, "fetch", "download", ref.Label(), err)
}

func (c *Client) retryable(ctx context.Context, err error) bool {
	if ctx == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// Transport faults (refused connections, resets, DNS hiccups) arrive
	// wrapped in url.Error and are worth another attempt.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) delayFor(err error, attempt int) time.Duration {
	var statusErr *statusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 {
		return c.capDelay(statusErr.RetryAfter)
	}
	return c.backoffDelay(attempt)
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		if delay > c.maxDelay/2 {
			delay = c.maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if delay > c.maxDelay {
		return c.maxDelay
	}
	return delay
}

// pace reserves the next request slot so that calls stay at least
// minInterval apart, regardless of how many goroutines share the client.
func (c *Client) pace(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	now := time.Now()
	next := c.lastSlot.Add(c.minInterval)
	if next.Before(now) {
		next = now
	}
	c.lastSlot = next
	c.mu.Unlock()
	return c.sleep(ctx, time.Until(next))
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx == nil {
		return errors.New("fetch: nil context")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
