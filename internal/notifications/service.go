package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"subtext/internal/config"
)

const userAgent = "Subtext/0.1.0"

// Event identifies a notification kind.
type Event string

const (
	EventRunStarted   Event = "run_started"
	EventRunCompleted Event = "run_completed"
	EventError        Event = "error"
	EventTest         Event = "test"
)

// Payload carries the values rendered into a notification message.
type Payload map[string]string

// Service publishes run and error notices to whoever is listening.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	base := strings.TrimSpace(cfg.Notifications.NtfyURL)
	if base == "" {
		base = "https://ntfy.sh"
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: strings.TrimRight(base, "/") + "/" + url.PathEscape(topic),
		client:   &http.Client{Timeout: timeout},
		runs:     cfg.Notifications.Runs,
		errors:   cfg.Notifications.Errors,
	}
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	runs     bool
	errors   bool
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	if !n.wants(event) {
		return nil
	}
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) wants(event Event) bool {
	switch event {
	case EventRunStarted, EventRunCompleted:
		return n.runs
	case EventError:
		return n.errors
	default:
		return true
	}
}

func render(event Event, payload Payload) (message, bool) {
	get := func(key string) string {
		return strings.TrimSpace(payload[key])
	}
	orZero := func(value string) string {
		if value == "" {
			return "0"
		}
		return value
	}

	switch event {
	case EventRunStarted:
		return message{
			title: "Subtext - Run Started",
			body:  fmt.Sprintf("Caption run started for %s videos", orZero(get("videos"))),
			tags:  []string{"subtext", "run", "started"},
		}, true

	case EventRunCompleted:
		indexed := orZero(get("indexed"))
		failed := orZero(get("failed"))
		duration := get("duration")
		if duration == "" {
			duration = "0s"
		}
		title := "Subtext - Run Complete"
		body := fmt.Sprintf("Caption run complete: %s tracks indexed in %s", indexed, duration)
		if failed != "0" {
			title = "Subtext - Run Complete (with errors)"
			body = fmt.Sprintf("Caption run complete: %s tracks indexed, %s failed in %s", indexed, failed, duration)
		}
		if skipped := get("skipped"); skipped != "" && skipped != "0" {
			body += fmt.Sprintf(" (%s skipped)", skipped)
		}
		return message{
			title: title,
			body:  body,
			tags:  []string{"subtext", "run", "completed"},
		}, true

	case EventError:
		body := "Error"
		if label := get("context"); label != "" {
			body += " with " + label
		}
		detail := get("error")
		if detail == "" {
			detail = "unknown"
		}
		return message{
			title:    "Subtext - Error",
			body:     body + ": " + detail,
			tags:     []string{"subtext", "error", "alert"},
			priority: "high",
		}, true

	case EventTest:
		return message{
			title:    "Subtext - Test",
			body:     "Notification system test",
			tags:     []string{"subtext", "test"},
			priority: "low",
		}, true
	}
	return message{}, false
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
