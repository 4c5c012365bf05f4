package common

import (
	"context"
	"sync"

	"github.com/castlebay/warroom-go/internal/domain/campaign"
)

// EventBus is an in-process pub/sub for campaign lifecycle events.
// Thread-safe, supports multiple subscribers per event name. Buffered
// channels keep publishers from blocking on slow consumers; an event
// toward a full subscriber is dropped rather than stalling a generator.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan campaign.Event
}

// Compile-time interface check
var _ campaign.EventPublisher = (*EventBus)(nil)

// NewEventBus creates an event bus with no subscribers.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]chan campaign.Event)}
}

// Subscribe returns a channel receiving events with the given name.
func (b *EventBus) Subscribe(eventName string, buffer int) <-chan campaign.Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan campaign.Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventName] = append(b.subscribers[eventName], ch)
	return ch
}

// Publish delivers the event to all subscribers of its name.
func (b *EventBus) Publish(ctx context.Context, event campaign.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.EventName()] {
		select {
		case ch <- event:
		default:
			// Subscriber backlog full; dropping beats blocking the
			// campaign transaction path.
		}
	}
}
