package arbiter_test

import (
	"testing"

	"nowplaying/internal/arbiter"
	"nowplaying/internal/signal"
)

type recorder struct {
	payloads []signal.Payload
}

func (r *recorder) Publish(p signal.Payload) { r.payloads = append(r.payloads, p) }

func payload(title, artist string, source signal.SourceType, pkg string) signal.Payload {
	return signal.Payload{Title: title, Artist: artist, SourceType: source, SourcePackage: pkg}
}

func TestOfferSuppressesDuplicates(t *testing.T) {
	rec := &recorder{}
	arb := arbiter.New(rec, nil)
	session := &arbiter.Session{}

	p := payload("A", "B", signal.SourceMediaPlayer, "p")
	if !arb.Offer(session, p) {
		t.Fatal("expected first offer to emit")
	}
	if arb.Offer(session, p) {
		t.Fatal("expected duplicate offer to be suppressed")
	}
	if len(rec.payloads) != 1 {
		t.Fatalf("expected one emission, got %d", len(rec.payloads))
	}

	if !arb.Offer(session, payload("A", "C", signal.SourceMediaPlayer, "p")) {
		t.Fatal("expected payload with a different artist to emit")
	}
	if len(rec.payloads) != 2 {
		t.Fatalf("expected two emissions, got %d", len(rec.payloads))
	}
	current, ok := session.Current()
	if !ok || current.Artist != "C" {
		t.Fatalf("unexpected session state %+v ok=%v", current, ok)
	}
}

func TestOfferRejectsInvalid(t *testing.T) {
	rec := &recorder{}
	arb := arbiter.New(rec, nil)
	if arb.Offer(&arbiter.Session{}, payload(" ", "B", signal.SourceMediaPlayer, "p")) {
		t.Fatal("expected blank title to be rejected")
	}
	if arb.Offer(nil, payload("A", "B", signal.SourceMediaPlayer, "p")) {
		t.Fatal("expected nil session to be rejected")
	}
	if len(rec.payloads) != 0 {
		t.Fatalf("unexpected emissions %+v", rec.payloads)
	}
}

func TestResetAllowsReemission(t *testing.T) {
	rec := &recorder{}
	arb := arbiter.New(rec, nil)
	session := &arbiter.Session{}
	p := payload("A", "B", signal.SourceNativeAssistant, "p")

	arb.Offer(session, p)
	session.Reset()
	if _, ok := session.Current(); ok {
		t.Fatal("expected empty session after reset")
	}
	if !arb.Offer(session, p) {
		t.Fatal("expected emission after reset")
	}
}

func TestSelectPriorityAndStability(t *testing.T) {
	tests := []struct {
		name      string
		payloads  []signal.Payload
		wantTitle string
		wantOK    bool
	}{
		{name: "empty", payloads: nil, wantOK: false},
		{
			name: "media player wins",
			payloads: []signal.Payload{
				payload("native", "x", signal.SourceNativeAssistant, "a"),
				payload("media", "x", signal.SourceMediaPlayer, "b"),
				payload("unknown", "x", signal.SourceUnknown, "c"),
			},
			wantTitle: "media", wantOK: true,
		},
		{
			name: "ties keep input order",
			payloads: []signal.Payload{
				payload("first", "x", signal.SourceNativeAssistant, "a"),
				payload("second", "x", signal.SourceNativeAssistant, "b"),
			},
			wantTitle: "first", wantOK: true,
		},
		{
			name: "invalid skipped",
			payloads: []signal.Payload{
				payload("", "x", signal.SourceMediaPlayer, "a"),
				payload("valid", "x", signal.SourceUnknown, "b"),
			},
			wantTitle: "valid", wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := arbiter.Select(tt.payloads)
			if ok != tt.wantOK || got.Title != tt.wantTitle {
				t.Fatalf("Select() = %+v, %v; want title %q, %v", got, ok, tt.wantTitle, tt.wantOK)
			}
		})
	}
}

func TestArbitrateResetsWhenNothingActive(t *testing.T) {
	rec := &recorder{}
	arb := arbiter.New(rec, nil)
	session := &arbiter.Session{}

	if _, found, emitted := arb.Arbitrate(session, []signal.Payload{payload("A", "B", signal.SourceMediaPlayer, "p")}); !found || !emitted {
		t.Fatalf("expected emission, found=%v emitted=%v", found, emitted)
	}
	if _, found, emitted := arb.Arbitrate(session, nil); found || emitted {
		t.Fatalf("expected nothing selected, found=%v emitted=%v", found, emitted)
	}
	if session.LastKey() != "" {
		t.Fatalf("expected reset key, got %q", session.LastKey())
	}
}

func TestEventKeyAndPriority(t *testing.T) {
	key := arbiter.EventKey(payload("A", "B", signal.SourceMediaPlayer, "p"))
	if key != "A|B|media_player|p" {
		t.Fatalf("unexpected key %q", key)
	}
	if arbiter.Priority(signal.SourceMediaPlayer) <= arbiter.Priority(signal.SourceNativeAssistant) ||
		arbiter.Priority(signal.SourceNativeAssistant) <= arbiter.Priority(signal.SourceUnknown) {
		t.Fatal("unexpected priority ordering")
	}
}

func TestAttachArtworkOnlyForCurrentKey(t *testing.T) {
	arb := arbiter.New(nil, nil)
	session := &arbiter.Session{}
	p := payload("A", "B", signal.SourceMediaPlayer, "p")
	key := arbiter.EventKey(p)

	if _, ok := session.AttachArtwork(key, "https://img/1.jpg"); ok {
		t.Fatal("expected inactive session to refuse artwork")
	}
	arb.Offer(session, p)
	if _, ok := session.AttachArtwork("other", "https://img/1.jpg"); ok {
		t.Fatal("expected stale key to be refused")
	}
	updated, ok := session.AttachArtwork(key, "https://img/1.jpg")
	if !ok || updated.ArtworkURL != "https://img/1.jpg" || updated.Title != "A" {
		t.Fatalf("unexpected attach result %+v ok=%v", updated, ok)
	}
	if _, ok := session.AttachArtwork(key, "https://img/2.jpg"); ok {
		t.Fatal("expected existing artwork to be kept")
	}
	if current, _ := session.Current(); current.ArtworkURL != "https://img/1.jpg" {
		t.Fatalf("unexpected current artwork %q", current.ArtworkURL)
	}
	if session.LastKey() != key {
		t.Fatalf("attaching artwork must not change the key, got %q", session.LastKey())
	}
}
