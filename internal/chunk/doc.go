// Package chunk groups parsed cues into fixed-size index documents.
//
// Each chunk concatenates the text of up to N consecutive cues and
// carries the time span they cover plus the video metadata needed to
// render a search hit. Chunk identifiers are deterministic so that
// re-indexing the same track overwrites the previous documents instead
// of duplicating them.
package chunk
