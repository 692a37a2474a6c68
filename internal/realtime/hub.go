// Package realtime fans marketplace events out to websocket clients
package realtime

import (
	"sync"
	"sync/atomic"

	"ynvest-tube/internal/models"
)

// DefaultBuffer is the per-subscriber queue length
const DefaultBuffer = 256

// Hub broadcasts events to every subscriber. A subscriber whose queue is
// full misses the event instead of blocking the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int]chan models.Event
	nextID      int
	buffer      int
	dropped     atomic.Uint64
}

// NewHub creates a hub with buffer slots per subscriber
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subscribers: make(map[int]chan models.Event), buffer: buffer}
}

// Publish implements models.EventPublisher
func (h *Hub) Publish(event models.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was slow
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Subscribe registers a new subscriber. The returned cancel func closes the channel.
func (h *Hub) Subscribe() (<-chan models.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan models.Event, h.buffer)
	h.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, id)
			close(ch)
		})
	}
}

// Subscribers returns the current subscriber count
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
