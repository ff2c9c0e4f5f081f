package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"subtext/internal/config"
	"subtext/internal/mediameta"
)

var mediaExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
	".mov":  true,
}

// discoverMedia expands the given arguments into media file paths that carry
// a metadata sidecar. Directories are walked recursively and silently skip
// files without a sidecar; an explicit file argument without one is an error.
func discoverMedia(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var media []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		media = append(media, path)
	}

	for _, arg := range args {
		expanded, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			return nil, fmt.Errorf("inspect %q: %w", arg, err)
		}

		if !info.IsDir() {
			sidecar := mediameta.Sidecar(expanded)
			if _, err := os.Stat(sidecar); err != nil {
				return nil, fmt.Errorf("%s has no metadata sidecar at %s", expanded, sidecar)
			}
			add(expanded)
			continue
		}

		walkErr := filepath.WalkDir(expanded, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			if !mediaExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			if _, err := os.Stat(mediameta.Sidecar(path)); err != nil {
				return nil
			}
			add(path)
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("scan %q: %w", arg, walkErr)
		}
	}
	return media, nil
}
