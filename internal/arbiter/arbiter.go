package arbiter

import (
	"log/slog"
	"strconv"
	"strings"

	"nowplaying/internal/logging"
	"nowplaying/internal/signal"
)

// Emitter receives payloads that survive duplicate suppression.
type Emitter interface {
	Publish(payload signal.Payload)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(signal.Payload)

// Publish calls f(payload).
func (f EmitterFunc) Publish(payload signal.Payload) { f(payload) }

// Priority ranks source types; higher wins.
func Priority(sourceType signal.SourceType) int {
	switch sourceType {
	case signal.SourceMediaPlayer:
		return 2
	case signal.SourceNativeAssistant:
		return 1
	default:
		return 0
	}
}

// Select returns the valid payload with the highest priority. Ties keep the
// earliest payload in input order.
func Select(payloads []signal.Payload) (signal.Payload, bool) {
	var (
		best  signal.Payload
		found bool
	)
	for _, payload := range payloads {
		if !payload.Valid() {
			continue
		}
		if !found || Priority(payload.SourceType) > Priority(best.SourceType) {
			best, found = payload, true
		}
	}
	return best, found
}

// EventKey is the deduplication key of payload.
func EventKey(payload signal.Payload) string {
	return strings.Join([]string{
		payload.Title,
		payload.Artist,
		string(payload.SourceType),
		payload.SourcePackage,
	}, "|")
}

// Arbiter forwards new payloads to an Emitter.
type Arbiter struct {
	emitter Emitter
	logger  *slog.Logger
}

// New constructs an Arbiter. A nil emitter drops emissions after updating
// the session.
func New(emitter Emitter, logger *slog.Logger) *Arbiter {
	return &Arbiter{
		emitter: emitter,
		logger:  logging.NewComponentLogger(logger, "arbiter"),
	}
}

// Offer emits payload unless its event key matches the session's last key.
// It reports whether the payload was emitted.
func (a *Arbiter) Offer(session *Session, payload signal.Payload) bool {
	if session == nil || !payload.Valid() {
		return false
	}
	key := EventKey(payload)
	previous := session.LastKey()
	if !session.swap(key, payload) {
		a.logger.Debug("suppressed duplicate payload", logging.String("event_key", key))
		return false
	}
	attrs := append([]logging.Attr{
		logging.String(logging.FieldEventType, "now_playing_changed"),
		logging.String("previous_event_key", previous),
	}, logging.TrackAttrs(payload.Title, payload.Artist, string(payload.SourceType), payload.SourcePackage)...)
	a.logger.Info("now playing changed", logging.Args(attrs...)...)
	if a.emitter != nil {
		a.emitter.Publish(payload)
	}
	return true
}

// Arbitrate selects the best of payloads and offers it. When none is
// usable the session is reset. It returns the selected payload and whether
// it was emitted.
func (a *Arbiter) Arbitrate(session *Session, payloads []signal.Payload) (signal.Payload, bool, bool) {
	best, ok := Select(payloads)
	if !ok {
		if session != nil {
			session.Reset()
		}
		a.logger.Debug("no active now-playing source", logging.Int("candidates", len(payloads)))
		return signal.Payload{}, false, false
	}
	if len(payloads) > 1 {
		a.logger.Debug("selected now-playing source", logging.Args(logging.DecisionAttrs(
			"source_selection",
			string(best.SourceType),
			"highest priority of "+strconv.Itoa(len(payloads))+" candidates",
		)...)...)
	}
	return best, true, a.Offer(session, best)
}
