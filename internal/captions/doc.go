// Package captions turns vendor caption payloads into clean subtitle data.
//
// The vendor wire format is a json3 event stream: each event carries a start
// offset, an optional duration, and ordered text fragments. Human-authored
// tracks map one event to one cue. Machine-generated tracks arrive as a
// rolling window where every event repeats the tail of the previous one;
// Flatten reconstructs discrete cues by diffing consecutive events against
// their longest common prefix.
//
// FormatVTT renders a flattened cue sequence as a WebVTT document.
package captions
