// Package search talks to the chunk index over its REST API.
//
// The client covers the three operations the pipeline needs: bulk
// indexing of chunk documents, deleting every document belonging to a
// video, and a reachability ping for preflight checks. Bulk rejections
// are surfaced per document through BulkError so callers can report
// exactly which chunks the index refused.
package search
