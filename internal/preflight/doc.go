// Package preflight verifies the environment before a pipeline run.
//
// Checks cover the working directories, the track catalog, and the
// search index when indexing is enabled. Each check returns a Result
// rather than an error so the status command can render the full table
// even when several checks fail at once.
package preflight
