package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"subtext/internal/config"
)

func TestLoadDefaultsExpandPathsAndPass(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SUBTEXT_INDEX_URL", "")
	t.Setenv("SUBTEXT_INDEX_USERNAME", "")
	t.Setenv("SUBTEXT_INDEX_PASSWORD", "")
	t.Setenv("SUBTEXT_NATS_URL", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "subtext")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if len(cfg.Captions.Languages) != 1 || cfg.Captions.Languages[0] != "en" {
		t.Fatalf("unexpected default languages: %v", cfg.Captions.Languages)
	}
	if !cfg.Captions.AutoFallback {
		t.Fatal("expected auto fallback enabled by default")
	}
	if !cfg.Index.Enabled {
		t.Fatal("expected index enabled by default")
	}
	if cfg.Index.URL != "http://localhost:9200" {
		t.Fatalf("unexpected index url: %q", cfg.Index.URL)
	}
	if cfg.Index.Name != "captions" {
		t.Fatalf("unexpected index name: %q", cfg.Index.Name)
	}
	if cfg.Index.ChunkSize != 5 {
		t.Fatalf("unexpected chunk size: %d", cfg.Index.ChunkSize)
	}
	if cfg.Fetch.MaxAttempts != 4 {
		t.Fatalf("unexpected fetch attempts: %d", cfg.Fetch.MaxAttempts)
	}
	if cfg.Workers.Count != 2 || cfg.Workers.PerVideo != 1 {
		t.Fatalf("unexpected worker defaults: %+v", cfg.Workers)
	}
	if cfg.Logging.Format != "auto" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Events.SubjectPrefix != "subtext" {
		t.Fatalf("unexpected subject prefix: %q", cfg.Events.SubjectPrefix)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subtext.toml")
	t.Setenv("SUBTEXT_INDEX_URL", "")

	type payload struct {
		Captions struct {
			Languages    []string `toml:"languages"`
			AutoFallback bool     `toml:"auto_fallback"`
		} `toml:"captions"`
		Index struct {
			URL       string `toml:"url"`
			ChunkSize int    `toml:"chunk_size"`
		} `toml:"index"`
		Workers struct {
			Count int `toml:"count"`
		} `toml:"workers"`
	}
	custom := payload{}
	custom.Captions.Languages = []string{"DE", "en", "de"}
	custom.Captions.AutoFallback = false
	custom.Index.URL = "https://search.example.com:9200/"
	custom.Index.ChunkSize = 8
	custom.Workers.Count = 5
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	wantLangs := []string{"de", "en"}
	if len(cfg.Captions.Languages) != len(wantLangs) {
		t.Fatalf("unexpected languages: %v", cfg.Captions.Languages)
	}
	for i, lang := range wantLangs {
		if cfg.Captions.Languages[i] != lang {
			t.Fatalf("unexpected languages: %v", cfg.Captions.Languages)
		}
	}
	if cfg.Captions.AutoFallback {
		t.Fatal("expected auto fallback disabled")
	}
	if cfg.Index.URL != "https://search.example.com:9200" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Index.URL)
	}
	if cfg.Index.ChunkSize != 8 {
		t.Fatalf("unexpected chunk size: %d", cfg.Index.ChunkSize)
	}
	if cfg.Workers.Count != 5 {
		t.Fatalf("unexpected worker count: %d", cfg.Workers.Count)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subtext.toml")

	type payload struct {
		Index struct {
			URL      string `toml:"url"`
			Username string `toml:"username"`
			Password string `toml:"password"`
		} `toml:"index"`
		Events struct {
			NATSURL string `toml:"nats_url"`
		} `toml:"events"`
	}
	custom := payload{}
	custom.Index.URL = "http://file.example.com:9200"
	custom.Index.Username = "file-user"
	custom.Index.Password = "file-pass"
	custom.Events.NATSURL = "nats://file.example.com:4222"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("SUBTEXT_INDEX_URL", "http://env.example.com:9200")
	t.Setenv("SUBTEXT_INDEX_USERNAME", "env-user")
	t.Setenv("SUBTEXT_INDEX_PASSWORD", "env-pass")
	t.Setenv("SUBTEXT_NATS_URL", "nats://env.example.com:4222")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Index.URL != "http://env.example.com:9200" {
		t.Errorf("expected index url from env, got %q", cfg.Index.URL)
	}
	if cfg.Index.Username != "env-user" {
		t.Errorf("expected index username from env, got %q", cfg.Index.Username)
	}
	if cfg.Index.Password != "env-pass" {
		t.Errorf("expected index password from env, got %q", cfg.Index.Password)
	}
	if cfg.Events.NATSURL != "nats://env.example.com:4222" {
		t.Errorf("expected nats url from env, got %q", cfg.Events.NATSURL)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "auto_fallback") {
		t.Fatalf("sample config missing captions policy: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Index.Name != "captions" {
		t.Fatalf("unexpected sample index name: %q", cfg.Index.Name)
	}
	if cfg.Index.ChunkSize != 5 {
		t.Fatalf("unexpected sample chunk size: %d", cfg.Index.ChunkSize)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Index.URL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed index url")
	}

	cfg = config.Default()
	cfg.Index.Username = "user"
	cfg.Index.Password = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for username without password")
	}

	cfg = config.Default()
	cfg.Index.ChunkSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive chunk size")
	}

	cfg = config.Default()
	cfg.Fetch.InitialBackoffMS = 1000
	cfg.Fetch.MaxBackoffMS = 100
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when max backoff < initial backoff")
	}

	cfg = config.Default()
	cfg.Workers.Count = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero workers")
	}

	cfg = config.Default()
	cfg.Events.NATSURL = "nats://localhost:4222"
	cfg.Events.SubjectPrefix = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing subject prefix")
	}

	cfg = config.Default()
	cfg.Captions.Languages = nil
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty language list should validate (captions disabled), got %v", err)
	}
}

func TestEmptyLanguagesDisablesCaptions(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subtext.toml")
	contents := "[captions]\nlanguages = []\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Captions.Languages) != 0 {
		t.Fatalf("expected empty languages to stay empty, got %v", cfg.Captions.Languages)
	}
}

func TestIndexDisabledSkipsValidation(t *testing.T) {
	cfg := config.Default()
	cfg.Index.Enabled = false
	cfg.Index.URL = ""
	cfg.Index.Name = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled index to skip validation, got %v", err)
	}
}
