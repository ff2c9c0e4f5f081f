// Package timecode converts between millisecond offsets and the
// HH:MM:SS.mmm timestamp form used in WebVTT cue lines.
//
// Hours grow past two digits instead of wrapping at 24 so multi-day
// recordings keep monotonic timestamps. All arithmetic is integer;
// repeated encode/decode round-trips are exact.
package timecode
