package catalog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a caption track.
type Status string

const (
	StatusResolved     Status = "resolved"
	StatusFetched      Status = "fetched"
	StatusParsed       Status = "parsed"
	StatusStored       Status = "stored"
	StatusIndexed      Status = "indexed"
	StatusSkippedIndex Status = "skipped_index"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusResolved,
	StatusFetched,
	StatusParsed,
	StatusStored,
	StatusIndexed,
	StatusSkippedIndex,
	StatusDone,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus normalizes a stored status value. The second return reports
// whether the value named a known status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// TrackRecord is one caption track persisted in SQLite.
type TrackRecord struct {
	ID           int64
	VideoID      string
	MediaPath    string
	Language     string
	Source       string
	FetchURL     string
	FetchFormat  string
	Status       Status
	ErrorMessage string
	SkipReason   string
	SubtitlePath string
	CueCount     int64
	ChunkCount   int64
	RunID        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Label renders the track as "language/source" for logs and tables.
func (r *TrackRecord) Label() string {
	return r.Language + "/" + r.Source
}

// HealthSummary describes aggregated track counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	InFlight   int
	Done       int
	Failed     int
	SkippedIdx int
}
