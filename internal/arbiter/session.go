package arbiter

import (
	"sync"

	"nowplaying/internal/signal"
)

// Session holds the most recently emitted payload and its event key.
type Session struct {
	mu      sync.RWMutex
	lastKey string
	last    signal.Payload
	active  bool
}

// Current returns the last emitted payload, if any.
func (s *Session) Current() (signal.Payload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.active
}

// LastKey returns the event key of the last emitted payload.
func (s *Session) LastKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastKey
}

// Reset clears the session so the next payload is always emitted.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastKey = ""
	s.last = signal.Payload{}
	s.active = false
}

// swap records payload under key unless key is already current. It reports
// whether the session changed.
func (s *Session) swap(key string, payload signal.Payload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active && s.lastKey == key {
		return false
	}
	s.lastKey = key
	s.last = payload
	s.active = true
	return true
}

// AttachArtwork sets the artwork of the current payload when key is still
// current and no artwork is recorded yet. It returns the updated payload.
func (s *Session) AttachArtwork(key, artworkURL string) (signal.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.lastKey != key || s.last.ArtworkURL != "" || artworkURL == "" {
		return signal.Payload{}, false
	}
	s.last.ArtworkURL = artworkURL
	return s.last, true
}
