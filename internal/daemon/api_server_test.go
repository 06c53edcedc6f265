package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nowplaying/internal/api"
	"nowplaying/internal/config"
	"nowplaying/internal/events"
	"nowplaying/internal/identity"
	"nowplaying/internal/listener"
	"nowplaying/internal/logging"
	"nowplaying/internal/lyrics"
	"nowplaying/internal/musicmeta"
	"nowplaying/internal/signal"
	"nowplaying/internal/testsupport"
)

type recordingProvider struct {
	title, artist string
	synced        bool
	query         string
}

func (p *recordingProvider) Resolve(_ context.Context, title, artist string, synced bool) lyrics.Result {
	p.title, p.artist, p.synced = title, artist, synced
	return lyrics.Result{
		Status:   lyrics.StatusFound,
		Lyrics:   "[00:01.00] hola",
		Metadata: &lyrics.Metadata{TrackName: title, Synced: true},
		Trace:    []string{"trace t: get ok"},
	}
}

func (p *recordingProvider) SearchCandidates(_ context.Context, query string) []lyrics.Candidate {
	p.query = query
	return []lyrics.Candidate{{TrackName: "Rosita", ArtistName: "Los Dos Carnales"}}
}

type recordingProfiler struct {
	artists []string
}

func (p *recordingProfiler) ArtistInsight(_ context.Context, artist string) (musicmeta.Insight, bool) {
	p.artists = append(p.artists, artist)
	return musicmeta.Insight{ArtistName: artist, PrimaryGenre: "Regional Mexicano", PopularReleases: []string{"Ya Supérame"}}, true
}

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (http.Handler, *Daemon, *recordingProvider) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenMemory(t, cfg)
	testsupport.SeedArtist(t, store, "Grupo Firme", 9)
	logger := logging.NewNop()
	splitter := identity.NewSplitter(store, identity.WithLogger(logger))
	hub := events.NewHub(16)
	provider := &recordingProvider{}
	d, err := New(cfg, store, listener.New(signal.NewExtractor(cfg.Extractor, splitter, logger), hub, logger), hub, provider, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d.api.routes(cfg.Paths.APIToken), d, provider
}

func serve(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func nativeSignal() api.Signal {
	return api.Signal{
		Key:           "sense-1",
		SourcePackage: "com.google.intelligence.sense",
		BigTitle:      "Ya Supérame de Grupo Firme",
	}
}

func TestAPIServerPostSignalThenNowPlaying(t *testing.T) {
	h, _, _ := newTestServer(t)

	w := serve(t, h, http.MethodPost, "/api/signals", nativeSignal())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
	resp := decode[api.SignalResponse](t, w)
	if !resp.Emitted || resp.Current == nil {
		t.Fatalf("expected emitted payload, got %+v", resp)
	}
	if resp.Current.Title != "Ya Supérame" || resp.Current.Artist != "Grupo Firme" {
		t.Fatalf("unexpected payload %+v", resp.Current)
	}
	if resp.Current.SourceType != string(signal.SourceNativeAssistant) {
		t.Fatalf("unexpected source type %q", resp.Current.SourceType)
	}

	w = serve(t, h, http.MethodGet, "/api/nowplaying", nil)
	np := decode[api.NowPlayingResponse](t, w)
	if !np.Playing || np.Payload == nil || np.Payload.Artist != "Grupo Firme" {
		t.Fatalf("unexpected now playing %+v", np)
	}
}

func TestAPIServerEventsSince(t *testing.T) {
	h, _, _ := newTestServer(t)
	serve(t, h, http.MethodPost, "/api/signals", nativeSignal())
	serve(t, h, http.MethodPost, "/api/signals/remove", api.RemoveRequest{Key: "sense-1"})

	w := serve(t, h, http.MethodGet, "/api/nowplaying/events?since=0", nil)
	resp := decode[api.EventsResponse](t, w)
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(resp.Events))
	}
	if resp.Events[0].Payload == nil || !resp.Events[1].Cleared {
		t.Fatalf("unexpected events %+v", resp.Events)
	}
	if resp.Next != 2 {
		t.Fatalf("expected cursor 2, got %d", resp.Next)
	}

	w = serve(t, h, http.MethodGet, "/api/nowplaying/events?since=2", nil)
	if got := decode[api.EventsResponse](t, w); len(got.Events) != 0 {
		t.Fatalf("expected no new events, got %+v", got.Events)
	}
}

func TestAPIServerReconnectArbitrates(t *testing.T) {
	h, _, _ := newTestServer(t)
	paused := api.Signal{Key: "player", SourcePackage: "com.example.player", Title: "Hype Boy", Text: "NewJeans", MediaSession: true, Ongoing: true}
	req := api.ReconnectRequest{Signals: []api.Signal{paused, nativeSignal()}}
	w := serve(t, h, http.MethodPost, "/api/signals/reconnect", req)
	resp := decode[api.SignalResponse](t, w)
	if resp.Current == nil || resp.Current.Artist != "Grupo Firme" {
		t.Fatalf("expected native source to win over a paused player, got %+v", resp.Current)
	}

	playing := paused
	playing.Playing = true
	req = api.ReconnectRequest{Signals: []api.Signal{nativeSignal(), playing}}
	w = serve(t, h, http.MethodPost, "/api/signals/reconnect", req)
	resp = decode[api.SignalResponse](t, w)
	if resp.Current == nil || resp.Current.Artist != "NewJeans" || resp.Current.SourceType != "media_player" {
		t.Fatalf("expected playing media player to win, got %+v", resp.Current)
	}
}

func TestAPIServerLyrics(t *testing.T) {
	h, _, provider := newTestServer(t)

	w := serve(t, h, http.MethodGet, "/api/lyrics?title=Rosita&artist=Los+Dos+Carnales&synced=false", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	resp := decode[api.LyricsResponse](t, w)
	if resp.Status != "found" || resp.Metadata == nil || !resp.Metadata.Synced {
		t.Fatalf("unexpected lyrics response %+v", resp)
	}
	if provider.title != "Rosita" || provider.artist != "Los Dos Carnales" || provider.synced {
		t.Fatalf("unexpected provider call %+v", provider)
	}

	w = serve(t, h, http.MethodGet, "/api/lyrics?synced=maybe", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad synced flag, got %d", w.Code)
	}
}

func TestAPIServerLyricsDefaultsToCurrentTrack(t *testing.T) {
	h, _, provider := newTestServer(t)
	serve(t, h, http.MethodPost, "/api/signals", nativeSignal())

	serve(t, h, http.MethodGet, "/api/lyrics", nil)
	if provider.title != "Ya Supérame" || provider.artist != "Grupo Firme" {
		t.Fatalf("expected current track lookup, got %+v", provider)
	}
	if !provider.synced {
		t.Fatal("expected configured synced preference")
	}
}

func TestAPIServerLyricsSearch(t *testing.T) {
	h, _, provider := newTestServer(t)

	w := serve(t, h, http.MethodGet, "/api/lyrics/search?q=rosita", nil)
	resp := decode[api.SearchResponse](t, w)
	if len(resp.Candidates) != 1 || provider.query != "rosita" {
		t.Fatalf("unexpected search response %+v", resp)
	}

	w = serve(t, h, http.MethodGet, "/api/lyrics/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without q, got %d", w.Code)
	}
}

func TestAPIServerMemory(t *testing.T) {
	h, _, _ := newTestServer(t)
	w := serve(t, h, http.MethodGet, "/api/memory", nil)
	resp := decode[api.MemoryResponse](t, w)
	if len(resp.Artists) != 1 || resp.Artists[0].Name != "grupo firme" || resp.Artists[0].Confidence != 9 {
		t.Fatalf("unexpected memory response %+v", resp)
	}
}

func TestAPIServerRejectsBadRequests(t *testing.T) {
	h, _, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"wrong method", http.MethodPost, "/api/nowplaying", "", http.StatusMethodNotAllowed},
		{"get on signals", http.MethodGet, "/api/signals", "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "/api/signals", "{", http.StatusBadRequest},
		{"missing key", http.MethodPost, "/api/signals", `{"title":"x"}`, http.StatusBadRequest},
		{"remove without key", http.MethodPost, "/api/signals/remove", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestAPIServerRequiresToken(t *testing.T) {
	h, _, _ := newTestServer(t, testsupport.WithAPIToken("secret"))

	w := serve(t, h, http.MethodGet, "/api/nowplaying", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/nowplaying", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/nowplaying", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
}

func TestNewAPIServerDisabledWithoutBind(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.APIBind = "  "
	if srv := newAPIServer(&cfg, &Daemon{}, nil); srv != nil {
		t.Fatal("expected nil server without bind address")
	}
}

func TestAPIServerArtistInsight(t *testing.T) {
	h, d, _ := newTestServer(t)

	w := serve(t, h, http.MethodGet, "/api/artist?name=NewJeans", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without metadata, got %d", w.Code)
	}

	profiler := &recordingProfiler{}
	d.metadata = profiler

	w = serve(t, h, http.MethodGet, "/api/artist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with nothing playing, got %d", w.Code)
	}

	serve(t, h, http.MethodPost, "/api/signals", nativeSignal())
	w = serve(t, h, http.MethodGet, "/api/artist", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	insight := decode[api.ArtistInsight](t, w)
	if insight.ArtistName != "Grupo Firme" || insight.PrimaryGenre != "Regional Mexicano" {
		t.Fatalf("unexpected insight %+v", insight)
	}

	serve(t, h, http.MethodGet, "/api/artist?name=NewJeans", nil)
	if len(profiler.artists) != 2 || profiler.artists[1] != "NewJeans" {
		t.Fatalf("unexpected lookups %v", profiler.artists)
	}

	if w := serve(t, h, http.MethodPost, "/api/artist", nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
