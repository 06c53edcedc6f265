package identity_test

import (
	"context"
	"errors"
	"testing"

	"nowplaying/internal/identity"
	"nowplaying/internal/memory"
	"nowplaying/internal/testsupport"
)

func TestSplitStrategies(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		song     string
		artist   string
		strategy identity.Strategy
	}{
		{name: "hyphen", raw: "Bohemian Rhapsody - Queen", song: "Bohemian Rhapsody", artist: "Queen", strategy: identity.StrategyDelimiter},
		{name: "bullet before hyphen", raw: "Tusa • Karol G - Nicki Minaj", song: "Tusa", artist: "Karol G - Nicki Minaj", strategy: identity.StrategyDelimiter},
		{name: "em dash", raw: "La Bamba — Ritchie Valens", song: "La Bamba", artist: "Ritchie Valens", strategy: identity.StrategyDelimiter},
		{name: "first occurrence", raw: "A - B - C", song: "A", artist: "B - C", strategy: identity.StrategyDelimiter},
		{name: "by", raw: "Shape of You by Ed Sheeran", song: "Shape of You", artist: "Ed Sheeran", strategy: identity.StrategyBy},
		{name: "last by", raw: "Stand By Me by Ben E. King", song: "Stand By Me", artist: "Ben E. King", strategy: identity.StrategyBy},
		{name: "quoted straight", raw: `"Despacito" de "Luis Fonsi"`, song: "Despacito", artist: "Luis Fonsi", strategy: identity.StrategyQuoted},
		{name: "quoted curly", raw: "“La Bamba” de “Ritchie Valens”", song: "La Bamba", artist: "Ritchie Valens", strategy: identity.StrategyQuoted},
		{name: "de single", raw: "El Rey de Vicente Fernandez", song: "El Rey", artist: "Vicente Fernandez", strategy: identity.StrategyDe},
		{name: "de prefers ensemble", raw: "Rosita de Michoacan de Los Dos Carnales", song: "Rosita de Michoacan", artist: "Los Dos Carnales", strategy: identity.StrategyDe},
		{name: "de keeps compound name", raw: "El Corrido de Los Alegres de Sinaloa", song: "El Corrido", artist: "Los Alegres de Sinaloa", strategy: identity.StrategyDe},
		{name: "de falls back to last", raw: "Mix de Texas", song: "Mix", artist: "Texas", strategy: identity.StrategyDe},
		{name: "keeps leading apostrophe", raw: "'Round Midnight - Thelonious Monk", song: "'Round Midnight", artist: "Thelonious Monk", strategy: identity.StrategyDelimiter},
		{name: "folds curly apostrophe", raw: "Don’t Stop Me Now - Queen", song: "Don't Stop Me Now", artist: "Queen", strategy: identity.StrategyDelimiter},
		{name: "skips esta sonando", raw: "Está sonando\nDespacito de Luis Fonsi", song: "Despacito", artist: "Luis Fonsi", strategy: identity.StrategyDe},
		{name: "skips helper line", raw: "Now playing\nHotel California - Eagles", song: "Hotel California", artist: "Eagles", strategy: identity.StrategyDelimiter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splitter := identity.NewSplitter(nil)
			got, ok := splitter.Split(context.Background(), tt.raw)
			if !ok {
				t.Fatalf("Split(%q) returned no identity", tt.raw)
			}
			if got.SongTitle != tt.song || got.ArtistName != tt.artist || got.Strategy != tt.strategy {
				t.Fatalf("Split(%q) = %+v, want song=%q artist=%q strategy=%s", tt.raw, got, tt.song, tt.artist, tt.strategy)
			}
		})
	}
}

func TestSplitRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"Hotel California",
		"Mantén presionado para ver el historial de canciones",
		"Song history - Tap to see",
		"Presiona y ve tu historial de canciones",
		"Esta sonando de fondo",
		"by",
	} {
		if got, ok := identity.NewSplitter(nil).Split(context.Background(), raw); ok {
			t.Fatalf("expected no identity for %q, got %+v", raw, got)
		}
	}
}

func TestSplitUsesMemoryBoost(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenMemory(t, cfg)
	testsupport.SeedArtist(t, store, "Bad Bunny", 50)

	splitter := identity.NewSplitter(store)
	got, ok := splitter.Split(context.Background(), "Title de Bad Bunny")
	if !ok {
		t.Fatal("expected identity")
	}
	if got.ArtistName != "Bad Bunny" || got.SongTitle != "Title" {
		t.Fatalf("unexpected identity %+v", got)
	}

	artist, err := store.Get(context.Background(), "bad bunny")
	if err != nil || artist == nil {
		t.Fatalf("expected learned artist, got %+v err=%v", artist, err)
	}
	if artist.Confidence != 52 || artist.Occurrences != 2 {
		t.Fatalf("expected reinforcement to 52/2, got %+v", artist)
	}
}

func TestSplitLearnsArtistAndAliases(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenMemory(t, cfg)
	ctx := context.Background()

	splitter := identity.NewSplitter(store, identity.WithScores(cfg.Memory.InsertScore, cfg.Memory.IncrementScore))
	for i := 0; i < 2; i++ {
		if _, ok := splitter.Split(ctx, "Ya Supérame de Grupo Firme"); !ok {
			t.Fatal("expected identity")
		}
	}

	full, err := store.Get(ctx, "Grupo Firme")
	if err != nil || full == nil {
		t.Fatalf("expected full name stored, got %+v err=%v", full, err)
	}
	if full.Occurrences != 2 || full.Confidence != 7 {
		t.Fatalf("expected occurrences=2 confidence=7, got %+v", full)
	}
	alias, err := store.Get(ctx, "grupo")
	if err != nil || alias == nil {
		t.Fatalf("expected alias stored, got %+v err=%v", alias, err)
	}
	if alias.Confidence != memory.AliasConfidence {
		t.Fatalf("expected alias confidence %d, got %d", memory.AliasConfidence, alias.Confidence)
	}
}

func TestSplitSkipsLearningUnknownArtist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenMemory(t, cfg)
	ctx := context.Background()

	splitter := identity.NewSplitter(store, identity.WithUnknownArtist(cfg.Extractor.UnknownArtist))
	if _, ok := splitter.Split(ctx, "Some Song de "+cfg.Extractor.UnknownArtist); !ok {
		t.Fatal("expected identity")
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing learned, got %d rows", count)
	}
}

func TestSplitLearnsOnlyFromDeHeuristic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenMemory(t, cfg)
	ctx := context.Background()
	splitter := identity.NewSplitter(store)

	for _, raw := range []string{
		"Bohemian Rhapsody - Queen",
		"Shape of You by Ed Sheeran",
		`"Despacito" de "Luis Fonsi"`,
	} {
		if _, ok := splitter.Split(ctx, raw); !ok {
			t.Fatalf("expected identity for %q", raw)
		}
	}
	if count, err := store.Count(ctx); err != nil || count != 0 {
		t.Fatalf("expected nothing learned from explicit separators, got %d err=%v", count, err)
	}

	if _, ok := splitter.Split(ctx, "El Rey de Vicente Fernandez"); !ok {
		t.Fatal("expected identity")
	}
	artist, err := store.Get(ctx, "Vicente Fernandez")
	if err != nil || artist == nil {
		t.Fatalf("expected de split to be learned, got %+v err=%v", artist, err)
	}
}

type failingMemory struct {
	lookups int
	learns  int
}

func (f *failingMemory) LookupAll(context.Context) ([]memory.Artist, error) {
	f.lookups++
	return nil, errors.New("disk I/O error")
}

func (f *failingMemory) Learn(context.Context, string, int, int) error {
	f.learns++
	return errors.New("disk I/O error")
}

func (f *failingMemory) InsertAliasIfMissing(context.Context, string) (bool, error) {
	return false, errors.New("disk I/O error")
}

func TestSplitAbsorbsMemoryErrors(t *testing.T) {
	mem := &failingMemory{}
	splitter := identity.NewSplitter(mem)

	got, ok := splitter.Split(context.Background(), "El Rey de Vicente Fernandez")
	if !ok {
		t.Fatal("expected identity despite memory failures")
	}
	if got.ArtistName != "Vicente Fernandez" {
		t.Fatalf("unexpected artist %q", got.ArtistName)
	}
	if mem.lookups != 1 || mem.learns != 1 {
		t.Fatalf("expected one lookup and one learn attempt, got %d/%d", mem.lookups, mem.learns)
	}
}

func TestSplitSkipsLookupWhenDelimiterMatches(t *testing.T) {
	mem := &failingMemory{}
	if _, ok := identity.NewSplitter(mem).Split(context.Background(), "Bohemian Rhapsody - Queen"); !ok {
		t.Fatal("expected identity")
	}
	if mem.lookups != 0 {
		t.Fatalf("expected no memory lookup, got %d", mem.lookups)
	}
}
