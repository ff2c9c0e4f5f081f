// Package pipeline walks caption tracks through fetch, parse, store,
// and index, persisting every state transition in the track catalog.
//
// The orchestrator processes one video at a time: it resolves the
// wanted tracks from the video's metadata sidecar, records them, and
// advances each through the state machine
//
//	resolved -> fetched -> parsed -> stored -> (indexed | skipped_index) -> done
//
// with failed as the terminal error state. Tracks are independent; a
// failed track never aborts its video, and a failed video never aborts
// the run. The runner fans videos out across a bounded worker pool and
// aggregates the per-track outcomes into a run summary.
package pipeline
