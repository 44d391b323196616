// Package hub fans enriched vessel updates out to subscribers. It is a
// materially rewritten descendant of the teacher's forwarder manager: the
// same bounded-channel, drop-after-N-consecutive-full-sends eviction
// algorithm, generalized from raw []byte NMEA sentences pushed onto
// io.WriteCloser connections to typed vessel.HistoryPoint values pushed
// onto per-subscriber Go channels (this pipeline's only subscriber
// transport is a WebSocket endpoint, so there's no connection abstraction
// left to keep).
package hub

import (
	"log/slog"
	"sync"

	"github.com/aisentinel/aisentinel/metrics"
	"github.com/aisentinel/aisentinel/vessel"
)

const (
	// ChannelCap is the capacity of each subscriber's channel.
	ChannelCap = 20
	// CloseAfter is how many consecutive full-channel drops a subscriber
	// tolerates before being evicted.
	CloseAfter = 20
)

type subscriber struct {
	ch      chan vessel.HistoryPoint
	fullFor int
}

// Hub is the single fan-out point for enriched vessel updates.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uint64]*subscriber
	nextID      uint64
	log         *slog.Logger
}

// New creates an empty Hub.
func New(log *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[uint64]*subscriber),
		log:         log,
	}
}

// Subscribe registers a new subscriber and returns its ID and receive-only
// channel. Call Unsubscribe with the same ID when done.
func (h *Hub) Subscribe() (uint64, <-chan vessel.HistoryPoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	sub := &subscriber{ch: make(chan vessel.HistoryPoint, ChannelCap)}
	h.subscribers[id] = sub
	metrics.ActiveSubscribers.Set(float64(len(h.subscribers)))
	return id, sub.ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subscribers[id]; ok {
		close(sub.ch)
		delete(h.subscribers, id)
		metrics.ActiveSubscribers.Set(float64(len(h.subscribers)))
	}
}

// Publish attempts a non-blocking send of pt to every subscriber. A
// subscriber whose channel has been full for CloseAfter consecutive
// publishes in a row is evicted — slow consumers are dropped, never
// allowed to block the hub.
func (h *Hub) Publish(pt vessel.HistoryPoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subscribers {
		select {
		case sub.ch <- pt:
			sub.fullFor = 0
		default:
			sub.fullFor++
			if sub.fullFor >= CloseAfter {
				if h.log != nil {
					h.log.Warn("evicting slow broadcast subscriber", "id", id)
				}
				close(sub.ch)
				delete(h.subscribers, id)
			}
		}
	}
	metrics.ActiveSubscribers.Set(float64(len(h.subscribers)))
}

// Count returns the current number of attached subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
