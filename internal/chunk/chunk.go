package chunk

import (
	"fmt"
	"strings"

	"subtext/internal/captions"
)

// DefaultSize is the number of cues folded into one chunk when the
// configuration does not say otherwise.
const DefaultSize = 5

// Meta carries the per-track fields copied verbatim onto every chunk.
type Meta struct {
	VideoID     string
	Language    string
	Source      captions.Source
	Title       string
	Channel     string
	ChannelID   string
	RefreshedAt int64
}

// Chunk is one searchable document covering a run of consecutive cues.
type Chunk struct {
	ID          string          `json:"id"`
	VideoID     string          `json:"video_id"`
	Title       string          `json:"title"`
	Channel     string          `json:"channel"`
	ChannelID   string          `json:"channel_id"`
	Language    string          `json:"language"`
	Source      captions.Source `json:"source"`
	ChunkIndex  int             `json:"chunk_index"`
	StartMS     int64           `json:"start_ms"`
	EndMS       int64           `json:"end_ms"`
	Text        string          `json:"text"`
	RefreshedAt int64           `json:"refreshed_at"`
}

// Build folds cues into chunks of size cues each. The final chunk keeps
// whatever remainder is left, so every cue lands in exactly one chunk.
// Empty input produces no chunks. A non-positive size falls back to
// DefaultSize.
func Build(cues []captions.Cue, meta Meta, size int) []Chunk {
	if len(cues) == 0 {
		return nil
	}
	if size < 1 {
		size = DefaultSize
	}

	chunks := make([]Chunk, 0, (len(cues)+size-1)/size)
	for start := 0; start < len(cues); start += size {
		end := start + size
		if end > len(cues) {
			end = len(cues)
		}
		group := cues[start:end]

		texts := make([]string, 0, len(group))
		for _, cue := range group {
			texts = append(texts, cue.Text)
		}

		index := start / size
		chunks = append(chunks, Chunk{
			ID:          fmt.Sprintf("%s-%s-%d", meta.VideoID, meta.Language, index),
			VideoID:     meta.VideoID,
			Title:       meta.Title,
			Channel:     meta.Channel,
			ChannelID:   meta.ChannelID,
			Language:    meta.Language,
			Source:      meta.Source,
			ChunkIndex:  index,
			StartMS:     group[0].StartMS,
			EndMS:       group[len(group)-1].EndMS,
			Text:        strings.Join(texts, " "),
			RefreshedAt: meta.RefreshedAt,
		})
	}
	return chunks
}
