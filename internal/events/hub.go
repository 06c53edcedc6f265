package events

import (
	"context"
	"sync"
	"time"

	"nowplaying/internal/signal"
)

const defaultCapacity = 128

// Event is one emitted change. Cleared events mark the end of a session and
// carry no payload.
type Event struct {
	Sequence  uint64          `json:"seq"`
	Timestamp time.Time       `json:"ts"`
	Payload   *signal.Payload `json:"payload,omitempty"`
	Cleared   bool            `json:"cleared,omitempty"`
}

// Hub stores recent events and wakes waiters when new events arrive.
type Hub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	buffer   []Event
	nextSeq  uint64
	now      func() time.Time
}

// NewHub constructs a bounded in-memory event buffer.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	h := &Hub{capacity: capacity, now: time.Now}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Publish appends payload as a new event.
func (h *Hub) Publish(payload signal.Payload) {
	p := payload
	h.append(Event{Payload: &p})
}

// Clear appends an event recording that nothing is playing.
func (h *Hub) Clear() {
	h.append(Event{Cleared: true})
}

func (h *Hub) append(evt Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSeq++
	evt.Sequence = h.nextSeq
	evt.Timestamp = h.now().UTC()
	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, evt)
	h.cond.Broadcast()
}

// Latest returns the most recent event.
func (h *Hub) Latest() (Event, bool) {
	if h == nil {
		return Event{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buffer) == 0 {
		return Event{}, false
	}
	return h.buffer[len(h.buffer)-1], true
}

// Fetch returns events with sequence greater than since, at most limit of
// them, plus the latest sequence number. When wait is true, Fetch blocks
// until at least one event is available or ctx ends.
func (h *Hub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]Event, uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	cancelWait := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.mu.Lock()
				h.cond.Broadcast()
				h.mu.Unlock()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		events, next := h.snapshotLocked(since, limit)
		if len(events) > 0 || !wait {
			return events, next, contextError(ctx)
		}
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
		h.cond.Wait()
	}
}

func (h *Hub) snapshotLocked(since uint64, limit int) ([]Event, uint64) {
	start := len(h.buffer)
	for i, evt := range h.buffer {
		if evt.Sequence > since {
			start = i
			break
		}
	}
	if start == len(h.buffer) {
		return nil, h.nextSeq
	}
	end := start + limit
	if end > len(h.buffer) {
		end = len(h.buffer)
	}
	out := make([]Event, end-start)
	copy(out, h.buffer[start:end])
	return out, h.nextSeq
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
