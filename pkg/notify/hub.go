package notify

import (
	"context"
	"sync"
	"time"
)

// Event describes one failed grid operation.
type Event struct {
	// Op names the operation that failed, e.g. "load_data".
	Op string
	// Err is the causing fault.
	Err error
	// Time is when the fault was recorded. Publish fills it when zero.
	Time time.Time
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func (s *subscriber) send(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	default:
		// Slow consumer: drop rather than block the grid.
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
}

// Hub fans Events out to any number of subscribers. All methods are safe for
// concurrent use.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	buffer int
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewHub creates a hub whose subscriber channels buffer the given number of
// events. A minimum buffer of 1 is enforced so delivery stays non-blocking.
func NewHub(buffer int) *Hub {
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		buffer: max(buffer, 1),
		done:   make(chan struct{}),
	}
}

// Subscribe returns a channel receiving every subsequently published event.
// The subscription is removed and the channel closed when ctx is cancelled
// or the hub closes. Subscribing to a closed hub yields a closed channel.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	sub := &subscriber{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub.ch
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	if ctx.Done() != nil {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			select {
			case <-ctx.Done():
				h.unsubscribe(sub)
			case <-h.done:
				// Close already tore the subscription down.
			}
		}()
	}
	return sub.ch
}

// Publish delivers the event to all current subscribers without blocking.
// A zero Time is stamped with the current time.
func (h *Hub) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for sub := range h.subs {
		sub.send(e)
	}
}

// Close shuts down the hub and closes all subscriber channels. It is
// idempotent.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for sub := range h.subs {
		sub.close()
	}
	clear(h.subs)
	h.mu.Unlock()

	close(h.done)
	h.wg.Wait()
	return nil
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	sub.close()
}
