package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"subtext/internal/services"
)

// SidecarPath returns where the subtitle document for the given media
// file and language lives.
func SidecarPath(mediaPath, language string) string {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	return base + "." + language + ".vtt"
}

// Store persists subtitle documents as sidecar files.
type Store struct{}

// NewStore returns a sidecar file store.
func NewStore() *Store {
	return &Store{}
}

// Write places the document at the sidecar path for the media file and
// language, replacing any previous version atomically.
func (s *Store) Write(ctx context.Context, mediaPath, language string, document []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(mediaPath) == "" {
		return "", errors.New("storage: media path is required")
	}
	if strings.TrimSpace(language) == "" {
		return "", errors.New("storage: language is required")
	}

	path := SidecarPath(mediaPath, language)
	tmpPath := path + ".tmp"
	defer os.Remove(tmpPath)

	if err := os.WriteFile(tmpPath, document, 0o644); err != nil {
		return "", services.Wrap(services.ErrStorageFailure, "storage", "write", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", services.Wrap(services.ErrStorageFailure, "storage", "finalize", path, err)
	}
	return path, nil
}

// Remove deletes the sidecar files for the given languages. Missing
// files are fine; removal keeps going past individual failures and
// reports the paths it actually deleted.
func (s *Store) Remove(mediaPath string, languages []string) ([]string, error) {
	if strings.TrimSpace(mediaPath) == "" {
		return nil, errors.New("storage: media path is required")
	}

	var removed []string
	var errs []error
	for _, language := range languages {
		if strings.TrimSpace(language) == "" {
			continue
		}
		path := SidecarPath(mediaPath, language)
		err := os.Remove(path)
		if err == nil {
			removed = append(removed, path)
			continue
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		errs = append(errs, services.Wrap(services.ErrStorageFailure, "storage", "remove", path, err))
	}
	return removed, errors.Join(errs...)
}
