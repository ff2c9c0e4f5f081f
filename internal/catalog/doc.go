// Package catalog persists caption track state in SQLite and exposes helpers
// for driving the per-track lifecycle.
//
// Each row records one (video, language, source) track as it moves through
// resolved, fetched, parsed, stored, indexed or skipped_index, and done, with
// failed as the terminal error state. The Store manages connections, schema
// initialization, stats queries, and maintenance operations (clear, retry).
//
// The database is transient working state for caption processing rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
package catalog
