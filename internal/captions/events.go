package captions

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawEvent is one timed entry from a json3 caption payload. Pointer fields
// distinguish absent values from zero: a missing start marks the event
// malformed, while a missing duration is legitimate and resolved against the
// following event during flattening.
type RawEvent struct {
	TStartMs    *int64    `json:"tStartMs"`
	DDurationMs *int64    `json:"dDurationMs"`
	Segs        []Segment `json:"segs"`
}

// Segment is a single text fragment within an event.
type Segment struct {
	UTF8 string `json:"utf8"`
}

type eventPayload struct {
	Events []RawEvent `json:"events"`
}

// DecodeEvents parses a raw json3 payload into its event sequence. A payload
// without events decodes to an empty sequence, not an error.
func DecodeEvents(payload []byte) ([]RawEvent, error) {
	var decoded eventPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode caption payload: %w", err)
	}
	return decoded.Events, nil
}

// text concatenates the event's fragments in order. Rolling-window payloads
// separate lines with bare newline fragments; those are collapsed to spaces
// so prefix comparison and cue text stay single-line.
func (e RawEvent) text() string {
	if len(e.Segs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range e.Segs {
		b.WriteString(seg.UTF8)
	}
	return strings.TrimSpace(strings.ReplaceAll(b.String(), "\n", " "))
}
