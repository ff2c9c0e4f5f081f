package mediameta

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Encoding describes one downloadable representation of a caption track.
type Encoding struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// Info is the subset of the downloader's info JSON the caption pipeline
// consumes.
type Info struct {
	ID                string                `json:"id"`
	Title             string                `json:"title"`
	Channel           string                `json:"channel"`
	ChannelID         string                `json:"channel_id"`
	Subtitles         map[string][]Encoding `json:"subtitles"`
	AutomaticCaptions map[string][]Encoding `json:"automatic_captions"`
}

// Sidecar derives the metadata sidecar path for a media file, replacing the
// media extension with ".info.json" per the downloader's convention.
func Sidecar(mediaPath string) string {
	ext := filepath.Ext(mediaPath)
	return strings.TrimSuffix(mediaPath, ext) + ".info.json"
}

// Load reads and decodes a metadata sidecar.
func Load(path string) (*Info, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata %s: %w", path, err)
	}

	var info Info
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", path, err)
	}
	if strings.TrimSpace(info.ID) == "" {
		return nil, errors.New("metadata missing video id")
	}
	return &info, nil
}

// LoadForMedia resolves and loads the sidecar next to a media file.
func LoadForMedia(mediaPath string) (*Info, error) {
	return Load(Sidecar(mediaPath))
}
