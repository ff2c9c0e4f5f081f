package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subtext/internal/catalog"
	"subtext/internal/config"
	"subtext/internal/mediameta"
	"subtext/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *catalog.Store
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("SUBTEXT_INDEX_URL", "")
	t.Setenv("SUBTEXT_NATS_URL", "")

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(homeDir, ".config", "subtext", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)

	return &cliTestEnv{cfg: cfg, store: store, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()

	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlog_dir = %q\n\n[captions]\nlanguages = [\"en\"]\n\n[index]\nenabled = false\n\n[fetch]\nmin_interval_ms = 0\n",
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// writeMediaFixture creates a media file plus metadata sidecar whose only
// caption track points at url.
func writeMediaFixture(t *testing.T, dir, videoID, url string) string {
	t.Helper()

	mediaPath := filepath.Join(dir, videoID+".mp4")
	if err := os.WriteFile(mediaPath, []byte("media"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	payload, err := json.Marshal(mediameta.Info{
		ID:      videoID,
		Title:   "Talk " + videoID,
		Channel: "Conf Archive",
		Subtitles: map[string][]mediameta.Encoding{
			"en": {{Ext: "json3", URL: url}},
		},
	})
	if err != nil {
		t.Fatalf("marshal info: %v", err)
	}
	if err := os.WriteFile(mediameta.Sidecar(mediaPath), payload, 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	return mediaPath
}
