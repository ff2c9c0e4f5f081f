// Package tracks decides which caption tracks to fetch for a video.
//
// The resolver is a pure function over the video's caption availability and
// the configured language policy: uploaded tracks win, automatic captions
// fill the gaps when the fallback is allowed, and languages with neither are
// silently omitted. Each resolved track carries a concrete fetch handle
// picked from the available encodings.
package tracks
