package lrclib

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *[]time.Duration) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var sleeps []time.Duration
	opts = append([]Option{WithSleeper(func(d time.Duration) { sleeps = append(sleeps, d) })}, opts...)
	client := NewClient(Config{
		BaseURL:       server.URL + "/",
		UserAgent:     "nowplaying-test",
		RetryAttempts: 3,
		RetryDelay:    100 * time.Millisecond,
	}, opts...)
	return client, &sleeps
}

func TestClientGetSendsParams(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("track_name"); got != "Bohemian Rhapsody" {
			t.Fatalf("unexpected track_name %q", got)
		}
		if got := r.URL.Query().Get("artist_name"); got != "Queen" {
			t.Fatalf("unexpected artist_name %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "nowplaying-test" {
			t.Fatalf("unexpected user agent %q", got)
		}
		_, _ = w.Write([]byte(`{"trackName":"Bohemian Rhapsody","artistName":"Queen","duration":354.0,"instrumental":false,"plainLyrics":"Is this the real life?"}`))
	})

	rec, err := client.Get(context.Background(), " Bohemian Rhapsody ", "Queen")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if plain, ok := rec.Text("plainLyrics"); !ok || plain != "Is this the real life?" {
		t.Fatalf("unexpected plain lyrics %q ok=%v", plain, ok)
	}
	if duration, ok := rec.Int("duration"); !ok || duration != 354 {
		t.Fatalf("unexpected duration %d ok=%v", duration, ok)
	}
	if instrumental, ok := rec.Bool("instrumental"); !ok || instrumental {
		t.Fatalf("unexpected instrumental %v ok=%v", instrumental, ok)
	}
	if _, ok := rec.Text("syncedLyrics"); ok {
		t.Fatal("expected syncedLyrics to be absent")
	}
}

func TestClientGetArrayTakesFirst(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[42, {"trackName":"first"}, {"trackName":"second"}]`))
	})
	rec, err := client.Get(context.Background(), "t", "a")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if name, _ := rec.Text("trackName"); name != "first" {
		t.Fatalf("expected first object, got %q", name)
	}
}

func TestClientNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := client.Get(context.Background(), "t", "a")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls.Load() != 1 || len(*sleeps) != 0 {
		t.Fatalf("expected single attempt, got calls=%d sleeps=%v", calls.Load(), *sleeps)
	}
}

func TestClientRetriesServerErrorsWithLinearBackoff(t *testing.T) {
	var calls atomic.Int32
	client, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"trackName":"ok"}]`))
	})

	records, err := client.Query(context.Background(), "ok")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(*sleeps) != len(want) || (*sleeps)[0] != want[0] || (*sleeps)[1] != want[1] {
		t.Fatalf("unexpected sleeps %v, want %v", *sleeps, want)
	}
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}, WithRetryMaxAttempts(2))

	_, err := client.Search(context.Background(), "t", "a")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status error, got %v", err)
	}
	if statusErr.Body != "slow down" {
		t.Fatalf("unexpected body %q", statusErr.Body)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestClientClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})
	if _, err := client.Query(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls.Load())
	}
}

func TestClientMalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})
	if _, err := client.Query(context.Background(), "x"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClientRetriesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	var sleeps int
	client := NewClient(Config{BaseURL: url, RetryAttempts: 3, RetryDelay: time.Millisecond},
		WithSleeper(func(time.Duration) { sleeps++ }))
	if _, err := client.Query(context.Background(), "x"); err == nil {
		t.Fatal("expected transport error")
	}
	if sleeps != 2 {
		t.Fatalf("expected 2 sleeps between 3 attempts, got %d", sleeps)
	}
}

func TestRecordAccessors(t *testing.T) {
	rec := Record{
		"name":   "  x ",
		"blank":  " ",
		"nulled": "null",
		"num":    "12.5",
		"flag":   "true",
		"nested": map[string]any{"a": 1},
	}
	if v, ok := rec.Text("name"); !ok || v != "x" {
		t.Fatalf("unexpected Text %q %v", v, ok)
	}
	if _, ok := rec.Text("blank"); ok {
		t.Fatal("expected blank string to be absent")
	}
	if _, ok := rec.Text("nulled"); ok {
		t.Fatal("expected literal null to be absent")
	}
	if _, ok := rec.Text("nested"); ok {
		t.Fatal("expected non-string to be absent")
	}
	if v, ok := rec.Float("num"); !ok || v != 12.5 {
		t.Fatalf("unexpected Float %v %v", v, ok)
	}
	if v, ok := rec.Bool("flag"); !ok || !v {
		t.Fatalf("unexpected Bool %v %v", v, ok)
	}
	if _, ok := rec.Int("missing"); ok {
		t.Fatal("expected missing key to be absent")
	}
}
