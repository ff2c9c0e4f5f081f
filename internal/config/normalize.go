package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCaptions()
	c.normalizeIndex()
	c.normalizeFetch()
	c.normalizeWorkers()
	c.normalizeNotifications()
	c.normalizeEvents()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeCaptions lowercases and dedupes the wanted languages. An empty
// list stays empty and disables caption processing; the compiled-in default
// covers configs that omit the key entirely.
func (c *Config) normalizeCaptions() {
	langs := make([]string, 0, len(c.Captions.Languages))
	seen := make(map[string]struct{}, len(c.Captions.Languages))
	for _, lang := range c.Captions.Languages {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	c.Captions.Languages = langs
}

func (c *Config) normalizeIndex() {
	if value, ok := os.LookupEnv("SUBTEXT_INDEX_URL"); ok && strings.TrimSpace(value) != "" {
		c.Index.URL = value
	}
	if value, ok := os.LookupEnv("SUBTEXT_INDEX_USERNAME"); ok && strings.TrimSpace(value) != "" {
		c.Index.Username = value
	}
	if value, ok := os.LookupEnv("SUBTEXT_INDEX_PASSWORD"); ok && strings.TrimSpace(value) != "" {
		c.Index.Password = value
	}
	c.Index.URL = strings.TrimRight(strings.TrimSpace(c.Index.URL), "/")
	if c.Index.URL == "" {
		c.Index.URL = defaultIndexURL
	}
	c.Index.Name = strings.ToLower(strings.TrimSpace(c.Index.Name))
	if c.Index.Name == "" {
		c.Index.Name = defaultIndexName
	}
	c.Index.Username = strings.TrimSpace(c.Index.Username)
	c.Index.Password = strings.TrimSpace(c.Index.Password)
	if c.Index.TimeoutSeconds <= 0 {
		c.Index.TimeoutSeconds = defaultIndexTimeoutSeconds
	}
	if c.Index.ChunkSize <= 0 {
		c.Index.ChunkSize = defaultIndexChunkSize
	}
}

func (c *Config) normalizeFetch() {
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeoutSeconds
	}
	if c.Fetch.MaxAttempts <= 0 {
		c.Fetch.MaxAttempts = defaultFetchMaxAttempts
	}
	if c.Fetch.InitialBackoffMS <= 0 {
		c.Fetch.InitialBackoffMS = defaultFetchInitialBackoffMS
	}
	if c.Fetch.MaxBackoffMS <= 0 {
		c.Fetch.MaxBackoffMS = defaultFetchMaxBackoffMS
	}
	if c.Fetch.MaxBackoffMS < c.Fetch.InitialBackoffMS {
		c.Fetch.MaxBackoffMS = c.Fetch.InitialBackoffMS
	}
	if c.Fetch.MinIntervalMS < 0 {
		c.Fetch.MinIntervalMS = defaultFetchMinIntervalMS
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultFetchUserAgent
	}
}

func (c *Config) normalizeWorkers() {
	if c.Workers.Count <= 0 {
		c.Workers.Count = defaultWorkerCount
	}
	if c.Workers.PerVideo <= 0 {
		c.Workers.PerVideo = defaultWorkersPerVideo
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Notifications.NtfyURL = strings.TrimRight(strings.TrimSpace(c.Notifications.NtfyURL), "/")
	if c.Notifications.NtfyURL == "" {
		c.Notifications.NtfyURL = defaultNtfyURL
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeEvents() {
	if value, ok := os.LookupEnv("SUBTEXT_NATS_URL"); ok && strings.TrimSpace(value) != "" {
		c.Events.NATSURL = value
	}
	c.Events.NATSURL = strings.TrimSpace(c.Events.NATSURL)
	c.Events.SubjectPrefix = strings.Trim(strings.TrimSpace(c.Events.SubjectPrefix), ".")
	if c.Events.SubjectPrefix == "" {
		c.Events.SubjectPrefix = defaultEventSubjectPrefix
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "auto":
		c.Logging.Format = "auto"
	case "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
