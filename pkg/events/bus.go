package events

import (
	"sync"

	"github.com/jscyril/mp3miner/api"
)

// Ensure EventBus implements Publisher interface at compile time
var _ api.Publisher = (*EventBus)(nil)

// EventBus handles event distribution using channels
type EventBus struct {
	subscribers map[api.EventType][]chan api.SessionEvent
	mu          sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[api.EventType][]chan api.SessionEvent),
	}
}

// Subscribe returns a channel for receiving events of the specified type
func (b *EventBus) Subscribe(eventType api.EventType) <-chan api.SessionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.SessionEvent, 10)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll returns a channel for receiving all event types
func (b *EventBus) SubscribeAll() <-chan api.SessionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.SessionEvent, 32)
	for _, eventType := range []api.EventType{
		api.EventTrackStarted,
		api.EventTrackFailed,
		api.EventPositionUpdate,
		api.EventStateChange,
	} {
		b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	}
	return ch
}

// Publish broadcasts an event to all subscribers of that event type
func (b *EventBus) Publish(event api.SessionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
			// Channel full, skip to prevent blocking the ticker
		}
	}
}

// Unsubscribe removes a subscriber channel
func (b *EventBus) Unsubscribe(ch <-chan api.SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close closes all subscriber channels
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A SubscribeAll channel is registered under every type
	closed := make(map[chan api.SessionEvent]bool)
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			if !closed[ch] {
				close(ch)
				closed[ch] = true
			}
		}
	}
	b.subscribers = make(map[api.EventType][]chan api.SessionEvent)
}
