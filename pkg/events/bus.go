package events

import (
	"sync"

	"github.com/jscyril/juke/api"
)

// EventBus fans engine and controller events out to subscribers.
// Publish never blocks: a subscriber with a full channel misses the event.
type EventBus struct {
	subscribers map[api.EventType][]chan api.AudioEvent
	mu          sync.RWMutex
	closed      bool
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[api.EventType][]chan api.AudioEvent),
	}
}

// Subscribe returns one channel receiving every listed event type
func (b *EventBus) Subscribe(types ...api.EventType) <-chan api.AudioEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.AudioEvent, 16)
	if b.closed {
		close(ch)
		return ch
	}
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], ch)
	}
	return ch
}

// Publish broadcasts an event to all subscribers of that event type
func (b *EventBus) Publish(event api.AudioEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes all subscriber channels; later publishes are dropped
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A channel subscribed to several types appears more than once
	closed := make(map[chan api.AudioEvent]bool)
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			if !closed[ch] {
				close(ch)
				closed[ch] = true
			}
		}
	}
	b.subscribers = make(map[api.EventType][]chan api.AudioEvent)
	b.closed = true
}
