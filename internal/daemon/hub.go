package daemon

import (
	"sync"

	"recap/internal/logging"
	"recap/internal/types"
)

const (
	// eventRingSize bounds how many recent events are kept for replay to
	// late subscribers.
	eventRingSize = 256

	// subscriberBuffer is the live-event headroom per subscriber. A
	// subscriber that falls further behind loses events rather than
	// blocking the publisher.
	subscriberBuffer = 256
)

// EventHub fans daemon events out to SSE subscribers. Publishing never
// blocks: slow subscribers drop events and are expected to resync by
// refetching state.
type EventHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan types.PushEvent
	ring   []types.PushEvent
	closed bool
	log    logging.Logger
}

func NewEventHub(log logging.Logger) *EventHub {
	if log == nil {
		log = logging.Nop()
	}
	return &EventHub{
		subs: make(map[int]chan types.PushEvent),
		log:  log,
	}
}

// Subscribe registers a listener. Up to replay recent events are preloaded
// into the channel so a reconnecting client can catch up on what it missed.
// The returned cancel func is safe to call more than once.
func (h *EventHub) Subscribe(replay int) (<-chan types.PushEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		ch := make(chan types.PushEvent)
		close(ch)
		return ch, func() {}
	}

	if replay < 0 {
		replay = 0
	}
	if replay > len(h.ring) {
		replay = len(h.ring)
	}

	ch := make(chan types.PushEvent, replay+subscriberBuffer)
	for _, ev := range h.ring[len(h.ring)-replay:] {
		ch <- ev
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish encodes the payload and broadcasts it. Encoding failures are a
// programming error on the publisher side, so they are logged and dropped
// instead of taking down the stream.
func (h *EventHub) Publish(kind types.EventKind, payload any) {
	ev, err := types.NewPushEvent(kind, payload)
	if err != nil {
		h.log.Warn("event_encode_failed", logging.F("kind", string(kind)), logging.F("error", err))
		return
	}
	h.Broadcast(ev)
}

// Broadcast records the event in the replay ring and offers it to every
// subscriber without blocking.
func (h *EventHub) Broadcast(ev types.PushEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.ring = append(h.ring, ev)
	if len(h.ring) > eventRingSize {
		h.ring = h.ring[len(h.ring)-eventRingSize:]
	}

	for id, sub := range h.subs {
		select {
		case sub <- ev:
		default:
			h.log.Debug("event_dropped",
				logging.F("kind", string(ev.Kind)),
				logging.F("subscriber", id),
			)
		}
	}
}

// Close shuts every subscriber channel. Later Subscribe calls get an
// already-closed channel.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub)
	}
}
