package itunes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nowplaying/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL + "/", RetryAttempts: 2},
		services.WithSleeper(func(time.Duration) {}))
}

func TestSearchSongsSendsTerm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("term") != "Hype Boy NewJeans" || q.Get("entity") != "song" || q.Get("limit") != "1" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(`{"resultCount":1,"results":[{"trackName":"Hype Boy","artistName":"NewJeans","artworkUrl100":"https://is1.mzstatic.com/a/100x100bb.jpg"}]}`))
	})

	results, err := client.SearchSongs(context.Background(), " Hype Boy NewJeans ", 0)
	if err != nil {
		t.Fatalf("SearchSongs returned error: %v", err)
	}
	if len(results) != 1 || results[0].TrackName != "Hype Boy" {
		t.Fatalf("unexpected results %+v", results)
	}
	if got := LargeArtwork(results[0].ArtworkURL100); got != "https://is1.mzstatic.com/a/600x600bb.jpg" {
		t.Fatalf("unexpected large artwork %q", got)
	}
}

func TestSearchArtistSongsUsesArtistTerm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("attribute") != "artistTerm" || q.Get("limit") != "12" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(`{"resultCount":0,"results":[]}`))
	})

	results, err := client.SearchArtistSongs(context.Background(), "Grupo Firme", 12)
	if err != nil || len(results) != 0 {
		t.Fatalf("unexpected results %+v err=%v", results, err)
	}
}

func TestSearchArtistsRejectsMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("entity") != "musicArtist" {
			t.Errorf("unexpected entity %q", r.URL.Query().Get("entity"))
		}
		_, _ = w.Write([]byte(`<html>`))
	})

	if _, err := client.SearchArtists(context.Background(), "Grupo Firme", 1); err == nil {
		t.Fatal("expected decode error")
	}
}
