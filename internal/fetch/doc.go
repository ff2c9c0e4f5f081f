// Package fetch downloads raw caption payloads over HTTP.
//
// The client retries transient failures (rate limits, server errors,
// transport faults) with exponential backoff and honors Retry-After
// hints, while client errors fail immediately. Requests are spaced by
// a configurable minimum interval so a run never hammers the caption
// host, even with several workers fetching at once.
package fetch
