package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. An empty captions.languages
// list is valid; it disables caption processing.
func (c *Config) Validate() error {
	if err := c.validateIndex(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateIndex() error {
	if !c.Index.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Index.URL) == "" {
		return errors.New("index.url must be set when index.enabled is true (or set SUBTEXT_INDEX_URL)")
	}
	parsed, err := url.Parse(c.Index.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("index.url %q must be an absolute http(s) URL", c.Index.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("index.url %q must use http or https", c.Index.URL)
	}
	if strings.TrimSpace(c.Index.Name) == "" {
		return errors.New("index.name must be set when index.enabled is true")
	}
	if err := ensurePositiveMap(map[string]int{
		"index.timeout_seconds": c.Index.TimeoutSeconds,
		"index.chunk_size":      c.Index.ChunkSize,
	}); err != nil {
		return err
	}
	if (c.Index.Username == "") != (c.Index.Password == "") {
		return errors.New("index.username and index.password must be set together")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if err := ensurePositiveMap(map[string]int{
		"fetch.timeout_seconds":    c.Fetch.TimeoutSeconds,
		"fetch.max_attempts":       c.Fetch.MaxAttempts,
		"fetch.initial_backoff_ms": c.Fetch.InitialBackoffMS,
		"fetch.max_backoff_ms":     c.Fetch.MaxBackoffMS,
	}); err != nil {
		return err
	}
	if c.Fetch.MaxBackoffMS < c.Fetch.InitialBackoffMS {
		return errors.New("fetch.max_backoff_ms must be >= fetch.initial_backoff_ms")
	}
	if c.Fetch.MinIntervalMS < 0 {
		return errors.New("fetch.min_interval_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	return ensurePositiveMap(map[string]int{
		"workers.count":     c.Workers.Count,
		"workers.per_video": c.Workers.PerVideo,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	if strings.TrimSpace(c.Notifications.NtfyURL) == "" {
		return errors.New("notifications.ntfy_url must be set when notifications.ntfy_topic is set")
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.NATSURL == "" {
		return nil
	}
	if strings.TrimSpace(c.Events.SubjectPrefix) == "" {
		return errors.New("events.subject_prefix must be set when events.nats_url is set")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
