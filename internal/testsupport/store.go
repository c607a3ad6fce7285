package testsupport

import (
	"testing"

	"subburn/internal/config"
	"subburn/internal/transcriptcache"
)

// MustOpenCache opens a transcript cache for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *transcriptcache.Store {
	t.Helper()

	store, err := transcriptcache.Open(cfg)
	if err != nil {
		t.Fatalf("transcriptcache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
