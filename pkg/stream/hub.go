package stream

import "sync"

// DefaultSubscriberBuffer is the number of messages a subscriber may lag
// behind before it is dropped.
const DefaultSubscriberBuffer = 64

// Subscriber receives broadcast messages on C. C is closed when the
// subscriber is removed or dropped for falling behind.
type Subscriber struct {
	C <-chan []byte

	ch      chan []byte
	dropped bool
}

// Dropped reports whether the hub removed the subscriber for lagging.
// It is meaningful once C is closed.
func (s *Subscriber) Dropped() bool {
	return s.dropped
}

// Hub fans messages out to subscribers. Broadcast never blocks: a
// subscriber whose buffer is full is dropped.
type Hub struct {
	mu      sync.Mutex
	subs    map[*Subscriber]struct{}
	buffer  int
	metrics *Metrics
}

// NewHub creates a hub whose subscribers buffer up to buffer messages.
func NewHub(buffer int, metrics *Metrics) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		subs:    make(map[*Subscriber]struct{}),
		buffer:  buffer,
		metrics: metrics,
	}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() *Subscriber {
	ch := make(chan []byte, h.buffer)
	s := &Subscriber{C: ch, ch: ch}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()

	h.metrics.setSubscribers(n)
	return s
}

// Unsubscribe removes s and closes its channel. It is a no-op for a
// subscriber that is already gone.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[s]
	if ok {
		delete(h.subs, s)
		close(s.ch)
	}
	n := len(h.subs)
	h.mu.Unlock()

	h.metrics.setSubscribers(n)
}

// Broadcast queues msg for every subscriber.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	var dropped int
	for s := range h.subs {
		select {
		case s.ch <- msg:
		default:
			s.dropped = true
			delete(h.subs, s)
			close(s.ch)
			dropped++
		}
	}
	n := len(h.subs)
	h.mu.Unlock()

	h.metrics.recordBroadcast(len(msg), dropped)
	h.metrics.setSubscribers(n)
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close removes every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
	h.mu.Unlock()

	h.metrics.setSubscribers(0)
}
