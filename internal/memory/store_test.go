package memory_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"nowplaying/internal/memory"
	"nowplaying/internal/testsupport"
)

func TestLearnInsertsThenReinforces(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenMemory(t, cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Learn(ctx, "Grupo  Firme", 5, 2); err != nil {
			t.Fatalf("Learn failed: %v", err)
		}
	}

	artists, err := store.LookupAll(ctx)
	if err != nil {
		t.Fatalf("LookupAll failed: %v", err)
	}
	if len(artists) != 1 {
		t.Fatalf("expected one entry, got %d: %+v", len(artists), artists)
	}
	got := artists[0]
	if got.Name != "grupo firme" {
		t.Fatalf("expected normalized name, got %q", got.Name)
	}
	if got.DisplayName != "Grupo Firme" {
		t.Fatalf("expected display name to keep casing, got %q", got.DisplayName)
	}
	if got.Occurrences != 2 || got.Confidence != 7 {
		t.Fatalf("expected occurrences=2 confidence=7, got %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("expected updated_at to be recorded")
	}
}

func TestLearnIgnoresShortNames(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenMemory(t, cfg)
	ctx := context.Background()

	for _, name := range []string{"", "  ", "x", " y "} {
		if err := store.Learn(ctx, name, 5, 2); err != nil {
			t.Fatalf("Learn(%q) failed: %v", name, err)
		}
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no entries, got %d", count)
	}
}

func TestInsertAliasIfMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenMemory(t, cfg)
	ctx := context.Background()

	testsupport.SeedArtist(t, store, "Los Tigres del Norte", 5)

	inserted, err := store.InsertAliasIfMissing(ctx, "Los Tigres")
	if err != nil || !inserted {
		t.Fatalf("expected alias insert, got inserted=%v err=%v", inserted, err)
	}
	inserted, err = store.InsertAliasIfMissing(ctx, "los  tigres")
	if err != nil || inserted {
		t.Fatalf("expected duplicate alias to be skipped, got inserted=%v err=%v", inserted, err)
	}
	inserted, err = store.InsertAliasIfMissing(ctx, "LOS TIGRES DEL NORTE")
	if err != nil || inserted {
		t.Fatalf("expected existing full name to be kept, got inserted=%v err=%v", inserted, err)
	}
	inserted, err = store.InsertAliasIfMissing(ctx, "el")
	if err != nil || inserted {
		t.Fatalf("expected short alias to be ignored, got inserted=%v err=%v", inserted, err)
	}

	alias, err := store.Get(ctx, "Los Tigres")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if alias == nil || alias.Confidence != memory.AliasConfidence || alias.Occurrences != 1 {
		t.Fatalf("unexpected alias row: %+v", alias)
	}
	full, err := store.Get(ctx, "los tigres del norte")
	if err != nil || full == nil || full.Confidence != 5 {
		t.Fatalf("expected full name untouched, got %+v err=%v", full, err)
	}
}

func TestLookupAllOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenMemory(t, cfg)
	ctx := context.Background()

	testsupport.SeedArtist(t, store, "Zoe", 3)
	testsupport.SeedArtist(t, store, "Alpha", 3)
	testsupport.SeedArtist(t, store, "Bad Bunny", 50)
	// Same confidence as Zoe/Alpha after reinforcement, but more occurrences.
	testsupport.SeedArtist(t, store, "Maná", 1)
	if err := store.Learn(ctx, "Maná", 1, 2); err != nil {
		t.Fatalf("Learn failed: %v", err)
	}

	artists, err := store.LookupAll(ctx)
	if err != nil {
		t.Fatalf("LookupAll failed: %v", err)
	}
	var names []string
	for _, a := range artists {
		names = append(names, a.Name)
	}
	want := []string{"bad bunny", "maná", "alpha", "zoe"}
	if len(names) != len(want) {
		t.Fatalf("unexpected names %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order mismatch: got %v, want %v", names, want)
		}
	}
}

func TestConcurrentLearnIsAtomic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenMemory(t, cfg)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Learn(ctx, "Peso Pluma", 5, 2); err != nil {
				t.Errorf("Learn failed: %v", err)
			}
		}()
	}
	wg.Wait()

	artist, err := store.Get(ctx, "peso pluma")
	if err != nil || artist == nil {
		t.Fatalf("Get failed: %+v %v", artist, err)
	}
	if artist.Occurrences != workers {
		t.Fatalf("expected %d occurrences, got %d", workers, artist.Occurrences)
	}
	if want := 5 + 2*(workers-1); artist.Confidence != want {
		t.Fatalf("expected confidence %d, got %d", want, artist.Confidence)
	}
}

func TestOpenRecreatesOutdatedSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	for _, stmt := range []string{
		"CREATE TABLE schema_version (version INTEGER NOT NULL)",
		"INSERT INTO schema_version (version) VALUES (1)",
		"CREATE TABLE artists (name TEXT PRIMARY KEY, confidence INTEGER, occurrences INTEGER)",
		"INSERT INTO artists (name, confidence, occurrences) VALUES ('old', 9, 9)",
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed legacy schema: %v", err)
		}
	}
	_ = db.Close()

	store, err := memory.Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected recreated empty table, got %d rows", count)
	}
	if err := store.Learn(ctx, "Fresh Artist", 5, 2); err != nil {
		t.Fatalf("Learn on recreated schema failed: %v", err)
	}
}

func TestOpenKeepsCurrentSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := memory.Open(cfg.Memory.Path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	testsupport.SeedArtist(t, store, "Karol G", 5)
	_ = store.Close()

	reopened := testsupport.MustOpenMemory(t, cfg)
	artist, err := reopened.Get(context.Background(), "karol g")
	if err != nil || artist == nil {
		t.Fatalf("expected artist to survive reopen, got %+v err=%v", artist, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := memory.Open("  ", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}
