package relay

import (
	"marketplace/config"
	"sync"
)

const defaultSubscriberBuffer = 16

// Filter narrows a subscription. Empty fields match everything.
type Filter struct {
	Table string
	ID    string
}

func (f Filter) Match(event ChangeEvent) bool {
	if f.Table != "" && f.Table != event.Table {
		return false
	}

	return f.ID == "" || f.ID == event.ID
}

type subscriber struct {
	filter Filter
	ch     chan ChangeEvent
}

// Hub fans hints out to in-process subscribers. A subscriber that cannot keep up misses hints.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]*subscriber
	next        uint64
	buffer      int
	closed      bool
}

func NewHub(cfg *config.Config) *Hub {
	buffer := cfg.Relay.SubscriberBuffer
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}

	return &Hub{
		subscribers: map[uint64]*subscriber{},
		buffer:      buffer,
	}
}

// Subscribe registers filter and returns the hint channel and its cancel func.
// The channel is closed by cancel or by Close.
func (h *Hub) Subscribe(filter Filter) (<-chan ChangeEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan ChangeEvent, h.buffer)

	if h.closed {
		close(ch)

		return ch, func() {}
	}

	id := h.next
	h.next++
	h.subscribers[id] = &subscriber{filter: filter, ch: ch}

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if sub, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(sub.ch)
			}
		})
	}
}

// Broadcast delivers event to every matching subscriber without blocking and returns the delivered count.
func (h *Hub) Broadcast(event ChangeEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0

	for _, sub := range h.subscribers {
		if !sub.filter.Match(event) {
			continue
		}

		select {
		case sub.ch <- event:
			delivered++
		default:
		}
	}

	return delivered
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}

// Close ends every subscription. Later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		close(sub.ch)
	}

	h.closed = true
}
