// Package storage writes subtitle documents next to their media files.
//
// Documents land as sidecar files named {media base}.{language}.vtt so
// players pick them up without any lookup table. Writes go through a
// temp file and rename, which keeps a crashed run from leaving a
// half-written subtitle behind.
package storage
