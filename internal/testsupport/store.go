package testsupport

import (
	"context"
	"testing"

	"nowplaying/internal/config"
	"nowplaying/internal/memory"
)

// MustOpenMemory opens a memory.Store for tests and registers cleanup.
func MustOpenMemory(t testing.TB, cfg *config.Config) *memory.Store {
	t.Helper()

	store, err := memory.Open(cfg.Memory.Path, nil)
	if err != nil {
		t.Fatalf("memory.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedArtist learns name once with the given confidence.
func SeedArtist(t testing.TB, store *memory.Store, name string, confidence int) {
	t.Helper()

	if err := store.Learn(context.Background(), name, confidence, 0); err != nil {
		t.Fatalf("store.Learn(%q): %v", name, err)
	}
}
