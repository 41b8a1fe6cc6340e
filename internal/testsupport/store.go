package testsupport

import (
	"context"
	"testing"

	"captionburn/internal/config"
	"captionburn/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob records a pending job with the given id.
func NewJob(t testing.TB, store *jobs.Store, id string) *jobs.Job {
	t.Helper()

	job, err := store.Create(context.Background(), jobs.NewJob{ID: id, VideoName: id + ".mp4", SpanCount: 1, EventCount: 2})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
