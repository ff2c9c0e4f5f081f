// Package mediameta reads the per-video metadata sidecar that accompanies
// archived media files.
//
// The sidecar is the downloader's info JSON: it carries the video identity,
// denormalized channel fields, and the caption availability maps (uploaded
// subtitles and automatic captions, each keyed by language tag). The loader
// only decodes the fields the caption pipeline consumes.
package mediameta
