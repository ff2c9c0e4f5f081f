package testsupport

import (
	"context"
	"testing"

	"subtext/internal/catalog"
	"subtext/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewTrack inserts a resolved track for tests using the provided store.
func NewTrack(t testing.TB, store *catalog.Store, videoID, language, source string) *catalog.TrackRecord {
	t.Helper()

	record, err := store.Insert(context.Background(), &catalog.TrackRecord{
		VideoID:  videoID,
		Language: language,
		Source:   source,
		Status:   catalog.StatusResolved,
	})
	if err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return record
}
