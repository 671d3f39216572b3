// Package events fans registration events out to connected websocket clients.
package events

import "sync"

// Event describes a newly registered record.
type Event struct {
	Tipo  string `json:"tipo"` // usuario, finca or barco
	ID    string `json:"id"`
	Fecha string `json:"fecha"`
}

// Hub is an in-process publish/subscribe fan-out. Slow subscribers drop
// events rather than block publishers.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Publish delivers e to every subscriber. Safe to call on a nil hub.
func (h *Hub) Publish(e Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function must be
// called to release it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}
