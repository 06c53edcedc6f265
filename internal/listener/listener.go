package listener

import (
	"context"
	"log/slog"
	"sync"

	"nowplaying/internal/arbiter"
	"nowplaying/internal/events"
	"nowplaying/internal/logging"
	"nowplaying/internal/signal"
)

// Extractor resolves a signal into a payload.
type Extractor interface {
	Extract(ctx context.Context, sig signal.Signal) (signal.Payload, bool)
}

// ArtworkResolver finds cover art for a track.
type ArtworkResolver interface {
	ArtworkURL(ctx context.Context, title, artist string) (string, bool)
}

// Option configures a Listener.
type Option func(*Listener)

// WithArtwork fills missing artwork of emitted payloads in the background
// and republishes the enriched payload.
func WithArtwork(resolver ArtworkResolver) Option {
	return func(l *Listener) {
		l.artwork = resolver
	}
}

// Listener owns the active signal set and the arbitration session.
type Listener struct {
	extractor Extractor
	arbiter   *arbiter.Arbiter
	session   *arbiter.Session
	hub       *events.Hub
	artwork   ArtworkResolver
	logger    *slog.Logger

	mu     sync.Mutex
	order  []string
	active map[string]entry

	lookups sync.WaitGroup
}

// entry caches the extraction result so re-arbitration does not re-parse
// (and re-teach memory) for signals that did not change.
type entry struct {
	payload signal.Payload
	ok      bool
}

// New constructs a Listener that emits into hub.
func New(extractor Extractor, hub *events.Hub, logger *slog.Logger, opts ...Option) *Listener {
	var emitter arbiter.Emitter
	if hub != nil {
		emitter = hub
	}
	l := &Listener{
		extractor: extractor,
		arbiter:   arbiter.New(emitter, logger),
		session:   &arbiter.Session{},
		hub:       hub,
		logger:    logging.NewComponentLogger(logger, "listener"),
		active:    make(map[string]entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// OnPosted records sig as active and emits its payload if it changed the
// current session.
func (l *Listener) OnPosted(ctx context.Context, sig signal.Signal) (signal.Payload, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := sig.ID()
	payload, ok := l.extractor.Extract(ctx, sig)
	if id != "" {
		l.trackLocked(id, entry{payload: payload, ok: ok})
	}
	if !ok {
		l.logger.Debug("notification produced no payload",
			logging.String("key", id),
			logging.String(logging.FieldSourcePackage, sig.SourcePackage))
		return signal.Payload{}, false
	}
	emitted := l.arbiter.Offer(l.session, payload)
	if emitted {
		l.enrich(ctx, payload)
	}
	return payload, emitted
}

// OnRemoved drops the signal tracked under key and re-arbitrates over the
// remaining signals. It returns the selected payload, if any.
func (l *Listener) OnRemoved(key string) (signal.Payload, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.active[key]; !ok {
		return l.session.Current()
	}
	delete(l.active, key)
	for i, k := range l.order {
		if k == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.logger.Debug("notification removed", logging.String("key", key), logging.Int("active", len(l.order)))
	return l.arbitrateLocked(context.Background())
}

// OnReconnected replaces the active set with signals and re-derives the best
// payload from all of them.
func (l *Listener) OnReconnected(ctx context.Context, signals []signal.Signal) (signal.Payload, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.order = l.order[:0]
	l.active = make(map[string]entry, len(signals))
	for _, sig := range signals {
		id := sig.ID()
		if id == "" {
			continue
		}
		payload, ok := l.extractor.Extract(ctx, sig)
		l.trackLocked(id, entry{payload: payload, ok: ok})
	}
	l.logger.Info("listener reconnected",
		logging.String(logging.FieldEventType, "listener_reconnected"),
		logging.Int("active", len(l.order)))
	return l.arbitrateLocked(ctx)
}

// Current returns the last emitted payload.
func (l *Listener) Current() (signal.Payload, bool) {
	return l.session.Current()
}

// ActiveCount reports how many signals are tracked.
func (l *Listener) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

func (l *Listener) trackLocked(id string, e entry) {
	if _, exists := l.active[id]; !exists {
		l.order = append(l.order, id)
	}
	l.active[id] = e
}

// arbitrateLocked returns the selected payload and whether one is active.
func (l *Listener) arbitrateLocked(ctx context.Context) (signal.Payload, bool) {
	payloads := make([]signal.Payload, 0, len(l.order))
	for _, id := range l.order {
		if e := l.active[id]; e.ok {
			payloads = append(payloads, e.payload)
		}
	}
	_, hadSession := l.session.Current()
	best, found, emitted := l.arbiter.Arbitrate(l.session, payloads)
	if !found {
		if hadSession && l.hub != nil {
			l.hub.Clear()
		}
		return signal.Payload{}, false
	}
	if emitted {
		l.enrich(ctx, best)
	}
	return best, true
}

// Wait blocks until background artwork lookups have finished.
func (l *Listener) Wait() {
	l.lookups.Wait()
}

// enrich resolves artwork for a just-emitted payload without holding up the
// caller. The result is dropped if the session moved on meanwhile.
func (l *Listener) enrich(ctx context.Context, payload signal.Payload) {
	if l.artwork == nil || payload.ArtworkURL != "" {
		return
	}
	key := arbiter.EventKey(payload)
	ctx = context.WithoutCancel(ctx)
	l.lookups.Go(func() {
		artworkURL, ok := l.artwork.ArtworkURL(ctx, payload.Title, payload.Artist)
		if !ok {
			return
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		updated, attached := l.session.AttachArtwork(key, artworkURL)
		if !attached {
			l.logger.Debug("artwork arrived after track change", logging.String("event_key", key))
			return
		}
		if l.hub != nil {
			l.hub.Publish(updated)
		}
		l.logger.Debug("artwork attached", logging.String("event_key", key))
	})
}
