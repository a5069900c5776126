package server

import "sync"

// Subscriber is one live client registration with the Hub. Events are
// delivered on a buffered channel; the channel is closed when the
// subscriber is removed.
type Subscriber struct {
	events chan struct{}
}

// Events returns the subscriber's delivery channel. It is closed by
// Unsubscribe, so receivers must check for closure.
func (s *Subscriber) Events() <-chan struct{} {
	return s.events
}

// Hub is the central fan-out point for change notifications. It holds the
// set of live subscribers and broadcasts logical events to all of them.
// One Hub exists per server process; it is constructed in the entry point
// and shared by every connection handler.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its handle. Safe to
// call concurrently with Broadcast and Unsubscribe.
func (h *Hub) Subscribe() *Subscriber {
	// Capacity 1: a buffered event already implies a reload, so further
	// events for a subscriber that hasn't drained yet carry no information.
	sub := &Subscriber{events: make(chan struct{}, 1)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscriber and closes its delivery channel.
// Removing an unknown or already-removed subscriber is a no-op, since
// disconnect detection can race with explicit cleanup.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.events)
	}
}

// Broadcast delivers one event to every current subscriber. Delivery is
// non-blocking per subscriber: a subscriber whose buffer is full has a
// reload pending already, and the event is dropped for it alone.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.events <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount returns the current number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
