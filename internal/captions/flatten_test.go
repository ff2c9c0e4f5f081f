package captions

import (
	"reflect"
	"testing"
)

func millis(v int64) *int64 {
	return &v
}

func event(start, duration *int64, fragments ...string) RawEvent {
	segs := make([]Segment, 0, len(fragments))
	for _, fragment := range fragments {
		segs = append(segs, Segment{UTF8: fragment})
	}
	return RawEvent{TStartMs: start, DDurationMs: duration, Segs: segs}
}

func TestFlattenUserMapsEventsDirectly(t *testing.T) {
	events := []RawEvent{
		event(millis(0), millis(400), "first ", "line"),
		event(millis(400), millis(600), "second line"),
	}
	got := Flatten(events, SourceUser, nil)
	want := []Cue{
		{StartMS: 0, EndMS: 400, Text: "first line"},
		{StartMS: 400, EndMS: 1000, Text: "second line"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten user cues = %+v, want %+v", got, want)
	}
}

func TestFlattenUserIdempotent(t *testing.T) {
	events := []RawEvent{
		event(millis(0), millis(500), "alpha"),
		event(millis(500), nil, "beta"),
		event(millis(1200), nil, "gamma"),
	}
	first := Flatten(events, SourceUser, nil)
	second := Flatten(events, SourceUser, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated flatten diverged: %+v vs %+v", first, second)
	}
}

func TestFlattenUserMissingDuration(t *testing.T) {
	events := []RawEvent{
		event(millis(0), nil, "borrows next start"),
		event(millis(700), nil, "final event"),
	}
	got := Flatten(events, SourceUser, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(got))
	}
	if got[0].EndMS != 700 {
		t.Fatalf("first cue end = %d, want next start 700", got[0].EndMS)
	}
	if got[1].EndMS != 700+fallbackSpanMillis {
		t.Fatalf("final cue end = %d, want fallback %d", got[1].EndMS, 700+fallbackSpanMillis)
	}
}

func TestFlattenSkipsMalformedEvents(t *testing.T) {
	events := []RawEvent{
		event(nil, millis(500), "no start time"),
		event(millis(100), millis(500), "good"),
	}
	got := Flatten(events, SourceUser, nil)
	if len(got) != 1 || got[0].Text != "good" {
		t.Fatalf("expected the malformed event to be skipped, got %+v", got)
	}
}

func TestFlattenAutoDeltaExtraction(t *testing.T) {
	events := []RawEvent{
		event(millis(0), millis(500), "hello"),
		event(millis(500), millis(500), "hello world"),
		event(millis(1000), millis(500), "hello world today"),
	}
	got := Flatten(events, SourceAuto, nil)
	want := []Cue{
		{StartMS: 0, EndMS: 500, Text: "hello"},
		{StartMS: 500, EndMS: 1000, Text: "world"},
		{StartMS: 1000, EndMS: 1500, Text: "today"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten auto cues = %+v, want %+v", got, want)
	}
}

func TestFlattenAutoSuppressesRepeats(t *testing.T) {
	events := []RawEvent{
		event(millis(0), millis(500), "hello world"),
		event(millis(500), millis(500), "hello world"),
		event(millis(1000), millis(500), "hello world"),
	}
	got := Flatten(events, SourceAuto, nil)
	if len(got) != 1 {
		t.Fatalf("identical events should emit one cue, got %+v", got)
	}
	if got[0].Text != "hello world" {
		t.Fatalf("cue text = %q, want %q", got[0].Text, "hello world")
	}
}

func TestFlattenAutoShrinkingText(t *testing.T) {
	// The window shrinks when old words scroll away; the shorter event adds
	// nothing, and the following event is diffed against the shrunken text.
	events := []RawEvent{
		event(millis(0), millis(500), "hello world"),
		event(millis(500), millis(500), "hello"),
		event(millis(1000), millis(500), "hello again"),
	}
	got := Flatten(events, SourceAuto, nil)
	want := []Cue{
		{StartMS: 0, EndMS: 500, Text: "hello world"},
		{StartMS: 1000, EndMS: 1500, Text: "again"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten auto cues = %+v, want %+v", got, want)
	}
}

func TestFlattenAutoNewlineFragments(t *testing.T) {
	events := []RawEvent{
		event(millis(0), millis(1000), "first line"),
		event(millis(1000), millis(1000), "first line", "\n", "second line"),
	}
	got := Flatten(events, SourceAuto, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 cues, got %+v", got)
	}
	if got[1].Text != "second line" {
		t.Fatalf("delta = %q, want %q", got[1].Text, "second line")
	}
}

func TestFlattenAutoPlaceholderEventKeepsWindow(t *testing.T) {
	events := []RawEvent{
		event(millis(0), millis(500), "hello world"),
		event(millis(500), millis(500), "\n"),
		event(millis(1000), millis(500), "hello world again"),
	}
	got := Flatten(events, SourceAuto, nil)
	want := []Cue{
		{StartMS: 0, EndMS: 500, Text: "hello world"},
		{StartMS: 1000, EndMS: 1500, Text: "again"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten auto cues = %+v, want %+v", got, want)
	}
}

func TestFlattenAutoNonOverlapInvariant(t *testing.T) {
	// Durations deliberately overrun the next event's start.
	events := []RawEvent{
		event(millis(0), millis(5000), "one"),
		event(millis(800), millis(5000), "one two"),
		event(millis(1600), millis(5000), "one two three"),
		event(millis(2400), nil, "one two three four"),
	}
	got := Flatten(events, SourceAuto, nil)
	if len(got) != 4 {
		t.Fatalf("expected 4 cues, got %d", len(got))
	}
	for i := 0; i < len(got)-1; i++ {
		if got[i].EndMS > got[i+1].StartMS {
			t.Fatalf("cue %d overlaps next: end %d > start %d", i, got[i].EndMS, got[i+1].StartMS)
		}
	}
	for i, cue := range got {
		if cue.StartMS > cue.EndMS {
			t.Fatalf("cue %d inverted: start %d > end %d", i, cue.StartMS, cue.EndMS)
		}
		if cue.Text == "" {
			t.Fatalf("cue %d has empty text", i)
		}
	}
}

func TestFlattenEmptyInput(t *testing.T) {
	if got := Flatten(nil, SourceAuto, nil); got != nil {
		t.Fatalf("expected nil cues for empty input, got %+v", got)
	}
}
