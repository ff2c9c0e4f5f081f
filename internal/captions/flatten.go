package captions

import (
	"log/slog"
	"strings"

	"subtext/internal/logging"
)

// fallbackSpanMillis bounds the final cue when the vendor omits its duration
// and no later event exists to borrow a start time from.
const fallbackSpanMillis = 5000

// Flatten converts an ordered event sequence into non-overlapping cues.
// Malformed events (no start time) are skipped with a warning; events without
// usable text are skipped silently. The returned cues ascend by start time
// and never overlap.
func Flatten(events []RawEvent, source Source, logger *slog.Logger) []Cue {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(events) == 0 {
		return nil
	}
	if source == SourceAuto {
		return flattenAuto(events, logger)
	}
	return flattenUser(events, logger)
}

func flattenUser(events []RawEvent, logger *slog.Logger) []Cue {
	cues := make([]Cue, 0, len(events))
	for idx, event := range events {
		if event.TStartMs == nil {
			logger.Warn("skipping caption event without start time", logging.Int("event_index", idx))
			continue
		}
		text := event.text()
		if text == "" {
			continue
		}
		cues = append(cues, Cue{
			StartMS: *event.TStartMs,
			EndMS:   eventEnd(events, idx),
			Text:    text,
		})
	}
	return cues
}

// flattenAuto reconstructs discrete cues from a rolling-window stream. Each
// event repeats the tail of the previous one plus any newly spoken words; the
// cue text is the remainder of the event after the longest common prefix with
// the previous event. Events that only repeat prior text produce no cue.
func flattenAuto(events []RawEvent, logger *slog.Logger) []Cue {
	cues := make([]Cue, 0, len(events))
	previous := ""
	for idx, event := range events {
		if event.TStartMs == nil {
			logger.Warn("skipping caption event without start time", logging.Int("event_index", idx))
			continue
		}
		current := event.text()
		if current == "" {
			// Placeholder events must not reset the window or every
			// visible word would repeat in the next delta.
			continue
		}
		delta := strings.TrimLeft(current[commonPrefixLen(previous, current):], " \t")
		previous = current
		if delta == "" {
			continue
		}
		cues = append(cues, Cue{
			StartMS: *event.TStartMs,
			EndMS:   eventEnd(events, idx),
			Text:    delta,
		})
	}
	clampOverlaps(cues)
	return cues
}

// eventEnd resolves an event's end offset: its own duration when present,
// otherwise the next timed event's start, otherwise a bounded fallback span.
func eventEnd(events []RawEvent, idx int) int64 {
	event := events[idx]
	start := *event.TStartMs
	if event.DDurationMs != nil {
		if end := start + *event.DDurationMs; end >= start {
			return end
		}
		return start
	}
	for _, next := range events[idx+1:] {
		if next.TStartMs == nil {
			continue
		}
		if *next.TStartMs >= start {
			return *next.TStartMs
		}
		break
	}
	return start + fallbackSpanMillis
}

func commonPrefixLen(a, b string) int {
	limit := len(a)
	if len(b) < limit {
		limit = len(b)
	}
	i := 0
	for i < limit && a[i] == b[i] {
		i++
	}
	return i
}

func clampOverlaps(cues []Cue) {
	for i := 0; i < len(cues)-1; i++ {
		if cues[i].EndMS > cues[i+1].StartMS {
			cues[i].EndMS = cues[i+1].StartMS
		}
		if cues[i].EndMS < cues[i].StartMS {
			cues[i].EndMS = cues[i].StartMS
		}
	}
}
