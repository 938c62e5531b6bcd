package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind names a change to a user's session state.
type EventKind string

const (
	EventSignedIn        EventKind = "signed_in"
	EventSignedOut       EventKind = "signed_out"
	EventPasswordChanged EventKind = "password_changed"
	EventAdminChanged    EventKind = "admin_changed"
)

// Event is published on the hub whenever session state changes.
type Event struct {
	Kind   EventKind
	UserID uuid.UUID
	At     time.Time
}

const subscriberBuffer = 32

// Hub fans session events out to subscribers. One hub is created at process
// start and closed at shutdown; Close ends every subscription.
type Hub struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan Event
	closed bool
}

// NewHub creates an open hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned channel is closed when the
// cancel func runs or the hub closes.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.next
	h.next++
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber without blocking. A subscriber
// whose buffer is full misses the event. Returns the number of deliveries.
func (h *Hub) Publish(ev Event) int {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}

	delivered := 0
	for _, ch := range h.subs {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Close ends every subscription. Further publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
