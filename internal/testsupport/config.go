package testsupport

import (
	"path/filepath"
	"testing"

	"subtext/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The search index is disabled so tests never reach for a live cluster;
// enable it explicitly with WithIndexURL.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Index.Enabled = false
	cfgVal.Fetch.MinIntervalMS = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLanguages sets the wanted caption languages on the test config.
func WithLanguages(langs ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Captions.Languages = langs
	}
}

// WithAutoFallback toggles the auto-caption fallback policy.
func WithAutoFallback(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Captions.AutoFallback = enabled
	}
}

// WithIndexURL enables indexing against the given URL, typically an
// httptest server.
func WithIndexURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Index.Enabled = true
		b.cfg.Index.URL = url
	}
}

// WithChunkSize overrides the cues-per-chunk setting on the test config.
func WithChunkSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Index.ChunkSize = size
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
