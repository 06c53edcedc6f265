package lyrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nowplaying/internal/lyrics"
	"nowplaying/internal/services/lrclib"
)

type fakeSource struct {
	get    func(track, artist string) (lrclib.Record, error)
	search func(track, artist string) ([]lrclib.Record, error)
	query  func(q string) ([]lrclib.Record, error)
	calls  []string
}

func (f *fakeSource) Get(_ context.Context, track, artist string) (lrclib.Record, error) {
	f.calls = append(f.calls, "get")
	if f.get == nil {
		return nil, lrclib.ErrNotFound
	}
	return f.get(track, artist)
}

func (f *fakeSource) Search(_ context.Context, track, artist string) ([]lrclib.Record, error) {
	f.calls = append(f.calls, "search")
	if f.search == nil {
		return nil, nil
	}
	return f.search(track, artist)
}

func (f *fakeSource) Query(_ context.Context, q string) ([]lrclib.Record, error) {
	f.calls = append(f.calls, "query:"+q)
	if f.query == nil {
		return nil, nil
	}
	return f.query(q)
}

func fixedTrace() string { return "trace-1" }

func TestResolvePreferSyncedFallsBackToPlain(t *testing.T) {
	src := &fakeSource{get: func(track, artist string) (lrclib.Record, error) {
		return lrclib.Record{"trackName": track, "artistName": artist, "plainLyrics": "plain words", "releaseDate": "1975-10-31T00:00:00Z"}, nil
	}}
	cascade := lyrics.NewCascade(src, lyrics.WithTraceIDs(fixedTrace))

	result := cascade.Resolve(context.Background(), "Bohemian Rhapsody", "Queen", true)
	if result.Status != lyrics.StatusFound || result.Lyrics != "plain words" {
		t.Fatalf("expected plain lyrics, got %+v", result)
	}
	if result.Metadata == nil || result.Metadata.Synced || result.Metadata.Year != 1975 || result.Metadata.TrackName != "Bohemian Rhapsody" {
		t.Fatalf("unexpected metadata %+v", result.Metadata)
	}
	if len(src.calls) != 1 {
		t.Fatalf("expected cascade to stop after get, calls=%v", src.calls)
	}
	if !strings.HasPrefix(result.Trace[0], "trace trace-1") {
		t.Fatalf("unexpected trace header %q", result.Trace[0])
	}
}

func TestResolveFallsThroughToQuery(t *testing.T) {
	src := &fakeSource{
		search: func(string, string) ([]lrclib.Record, error) {
			return []lrclib.Record{{"trackName": "x", "instrumental": true}}, nil
		},
		query: func(string) ([]lrclib.Record, error) {
			return []lrclib.Record{{"trackName": "Song", "syncedLyrics": "[00:01.00] hi", "plainLyrics": "hi", "year": 2001}}, nil
		},
	}
	result := lyrics.NewCascade(src).Resolve(context.Background(), " Song ", "Artist", true)
	if result.Status != lyrics.StatusFound || result.Lyrics != "[00:01.00] hi" {
		t.Fatalf("expected synced lyrics from query, got %+v", result)
	}
	if !result.Metadata.Synced || result.Metadata.Year != 2001 {
		t.Fatalf("unexpected metadata %+v", result.Metadata)
	}
	want := []string{"get", "search", "query:Song Artist"}
	if strings.Join(src.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected call order %v", src.calls)
	}
	if len(result.Trace) != 4 {
		t.Fatalf("expected header plus three steps, got %v", result.Trace)
	}
}

func TestResolveNotFound(t *testing.T) {
	src := &fakeSource{
		get: func(string, string) (lrclib.Record, error) {
			return nil, &lrclib.StatusError{StatusCode: 503}
		},
	}
	result := lyrics.NewCascade(src).Resolve(context.Background(), "Song", "Artist", false)
	if result.Status != lyrics.StatusNotFound || result.Lyrics != lyrics.NotFoundMessage || result.Metadata != nil {
		t.Fatalf("expected not found, got %+v", result)
	}
	if len(src.calls) != 3 {
		t.Fatalf("expected all three attempts, got %v", src.calls)
	}
}

func TestResolveBlankInputSkipsIO(t *testing.T) {
	src := &fakeSource{}
	for _, tc := range [][2]string{{"", "Artist"}, {"Song", "  "}} {
		result := lyrics.NewCascade(src).Resolve(context.Background(), tc[0], tc[1], true)
		if result.Status != lyrics.StatusNotFound {
			t.Fatalf("expected not found for %q/%q, got %+v", tc[0], tc[1], result)
		}
	}
	if len(src.calls) != 0 {
		t.Fatalf("expected no lookups, got %v", src.calls)
	}
}

func TestResolveRecoversPanics(t *testing.T) {
	src := &fakeSource{get: func(string, string) (lrclib.Record, error) {
		panic("boom")
	}}
	result := lyrics.NewCascade(src).Resolve(context.Background(), "Song", "Artist", true)
	if result.Status != lyrics.StatusUnavailable || result.Lyrics != lyrics.UnavailableMessage {
		t.Fatalf("expected unavailable, got %+v", result)
	}
}

func TestSearchCandidatesRanksAndLimits(t *testing.T) {
	src := &fakeSource{query: func(q string) ([]lrclib.Record, error) {
		return []lrclib.Record{
			{"trackName": "Despacito (Remix)", "artistName": "Luis Fonsi", "plainLyrics": "a"},
			{"artistName": "no track"},
			{"trackName": "Despacito", "artistName": "Luis Fonsi", "albumName": "Vida", "syncedLyrics": "[00:01.00] b"},
			{"trackName": "Something Else", "artistName": "Other"},
		}, nil
	}}
	cascade := lyrics.NewCascade(src, lyrics.WithSearchLimit(2))
	got := cascade.SearchCandidates(context.Background(), "despacito luis fonsi")
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", got)
	}
	if got[0].TrackName != "Despacito" || got[0].AlbumName != "Vida" || got[0].Lyrics != "[00:01.00] b" {
		t.Fatalf("unexpected first candidate %+v", got[0])
	}
	if got[1].TrackName != "Despacito (Remix)" {
		t.Fatalf("unexpected second candidate %+v", got[1])
	}
}

func TestSearchCandidatesDropsIncompleteAndPrefersSynced(t *testing.T) {
	src := &fakeSource{query: func(string) ([]lrclib.Record, error) {
		return []lrclib.Record{
			{"trackName": "Bésame Mucho", "artistName": "Luis Miguel", "plainLyrics": "plain", "syncedLyrics": "[00:02.00] synced"},
			{"trackName": "Bésame Mucho", "artistName": " ", "plainLyrics": "orphan"},
			{"trackName": "Bésame Mucho (Instrumental)", "artistName": "Luis Miguel", "plainLyrics": "null", "syncedLyrics": ""},
		}, nil
	}}
	got := lyrics.NewCascade(src).SearchCandidates(context.Background(), "besame mucho luis miguel")
	if len(got) != 1 {
		t.Fatalf("expected only the complete candidate, got %+v", got)
	}
	if got[0].ArtistName != "Luis Miguel" || got[0].Lyrics != "[00:02.00] synced" {
		t.Fatalf("expected synced lyrics for complete candidate, got %+v", got[0])
	}
}

func TestSearchCandidatesAbsorbsErrors(t *testing.T) {
	src := &fakeSource{query: func(string) ([]lrclib.Record, error) {
		return nil, errors.New("connection refused")
	}}
	got := lyrics.NewCascade(src).SearchCandidates(context.Background(), "x")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty candidate list, got %#v", got)
	}
	if got := lyrics.NewCascade(src).SearchCandidates(context.Background(), "  "); len(got) != 0 {
		t.Fatalf("expected empty list for blank query, got %+v", got)
	}
}

func TestSelectLyrics(t *testing.T) {
	both := lrclib.Record{"plainLyrics": "plain", "syncedLyrics": "synced"}
	tests := []struct {
		name       string
		rec        lrclib.Record
		prefer     bool
		wantText   string
		wantSynced bool
	}{
		{name: "prefer synced", rec: both, prefer: true, wantText: "synced", wantSynced: true},
		{name: "prefer plain", rec: both, prefer: false, wantText: "plain"},
		{name: "synced fallback", rec: lrclib.Record{"syncedLyrics": "synced"}, prefer: false, wantText: "synced", wantSynced: true},
		{name: "plain fallback", rec: lrclib.Record{"plainLyrics": "plain", "syncedLyrics": ""}, prefer: true, wantText: "plain"},
		{name: "neither", rec: lrclib.Record{"plainLyrics": nil}, prefer: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, synced := lyrics.SelectLyrics(tt.rec, tt.prefer)
			if text != tt.wantText || synced != tt.wantSynced {
				t.Fatalf("SelectLyrics() = %q, %v", text, synced)
			}
		})
	}
}

func TestParseMetadataYear(t *testing.T) {
	tests := []struct {
		rec  lrclib.Record
		want int
	}{
		{rec: lrclib.Record{"releaseYear": 1987, "year": 1999, "releaseDate": "2001-01-01"}, want: 1987},
		{rec: lrclib.Record{"year": 1999, "releaseDate": "2001-01-01"}, want: 1999},
		{rec: lrclib.Record{"releaseYear": "null", "releaseDate": "2016-03-04"}, want: 2016},
		{rec: lrclib.Record{"year": 1999}, want: 1999},
		{rec: lrclib.Record{"year": "2004"}, want: 2004},
		{rec: lrclib.Record{"releaseDate": "released 2012-05-01"}, want: 2012},
		{rec: lrclib.Record{"releaseDate": "n/a"}, want: 0},
		{rec: lrclib.Record{}, want: 0},
	}
	for _, tt := range tests {
		if got := lyrics.ParseMetadata(tt.rec).Year; got != tt.want {
			t.Fatalf("ParseMetadata(%v).Year = %d, want %d", tt.rec, got, tt.want)
		}
	}
}

func TestCascadeAgainstHTTPFixture(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get":
			_, _ = w.Write([]byte(`{"trackName":"Bohemian Rhapsody","artistName":"Queen","albumName":"A Night at the Opera","duration":354,"instrumental":false,"plainLyrics":"Is this the real life?","syncedLyrics":null}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := lrclib.NewClient(lrclib.Config{BaseURL: server.URL, RetryAttempts: 1})
	result := lyrics.NewCascade(client).Resolve(context.Background(), "Bohemian Rhapsody", "Queen", true)
	if result.Status != lyrics.StatusFound || result.Lyrics != "Is this the real life?" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Metadata.AlbumName != "A Night at the Opera" || result.Metadata.Duration != 354 {
		t.Fatalf("unexpected metadata %+v", result.Metadata)
	}
}
