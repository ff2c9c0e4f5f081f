// Package notifications publishes run and error notices over ntfy.
//
// Events are rendered into short human-readable messages and posted to
// the configured topic. Run and error notices can be toggled off
// independently, and without a topic the service degrades to a noop so
// callers never need to guard their Publish calls.
package notifications
