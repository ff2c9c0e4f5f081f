package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"subtext/internal/storage"
)

func TestSidecarPath(t *testing.T) {
	cases := []struct {
		name      string
		mediaPath string
		language  string
		want      string
	}{
		{"plain", "/media/show.mp4", "en", "/media/show.en.vtt"},
		{"mkv", "/media/show.mkv", "de", "/media/show.de.vtt"},
		{"region tag", "/media/show.mp4", "pt-br", "/media/show.pt-br.vtt"},
		{"no extension", "/media/show", "en", "/media/show.en.vtt"},
		{"dotted name", "/media/show.s01e01.mp4", "en", "/media/show.s01e01.en.vtt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := storage.SidecarPath(tc.mediaPath, tc.language); got != tc.want {
				t.Fatalf("SidecarPath(%q, %q) = %q, want %q", tc.mediaPath, tc.language, got, tc.want)
			}
		})
	}
}

func TestWriteCreatesSidecar(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "video.mp4")

	store := storage.NewStore()
	path, err := store.Write(context.Background(), mediaPath, "en", []byte("WEBVTT\n"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if path != filepath.Join(dir, "video.en.vtt") {
		t.Fatalf("unexpected sidecar path %q", path)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if string(contents) != "WEBVTT\n" {
		t.Fatalf("unexpected contents %q", contents)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file cleaned up, stat err=%v", err)
	}
}

func TestWriteReplacesPrevious(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "video.mp4")

	store := storage.NewStore()
	if _, err := store.Write(context.Background(), mediaPath, "en", []byte("old")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	path, err := store.Write(context.Background(), mediaPath, "en", []byte("new"))
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if string(contents) != "new" {
		t.Fatalf("expected replacement contents, got %q", contents)
	}
}

func TestWriteHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := storage.NewStore()
	if _, err := store.Write(ctx, "/media/video.mp4", "en", []byte("doc")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestRemoveDeletesExistingSidecars(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "video.mp4")

	store := storage.NewStore()
	ctx := context.Background()
	if _, err := store.Write(ctx, mediaPath, "en", []byte("en doc")); err != nil {
		t.Fatalf("write en: %v", err)
	}
	if _, err := store.Write(ctx, mediaPath, "de", []byte("de doc")); err != nil {
		t.Fatalf("write de: %v", err)
	}

	removed, err := store.Remove(mediaPath, []string{"en", "de", "fr"})
	if err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed files, got %v", removed)
	}
	for _, language := range []string{"en", "de"} {
		if _, statErr := os.Stat(storage.SidecarPath(mediaPath, language)); !os.IsNotExist(statErr) {
			t.Fatalf("expected %s sidecar removed", language)
		}
	}
}

func TestRemoveMissingFilesIsQuiet(t *testing.T) {
	store := storage.NewStore()
	removed, err := store.Remove(filepath.Join(t.TempDir(), "video.mp4"), []string{"en"})
	if err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if len(removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", removed)
	}
}
