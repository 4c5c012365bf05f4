package helpers

import (
	"context"
	"sync"

	"github.com/castlebay/warroom-go/internal/domain/campaign"
)

// EventRecorder captures published campaign events for assertions.
type EventRecorder struct {
	mu     sync.Mutex
	events []campaign.Event
}

// NewEventRecorder creates an empty recorder.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) Publish(_ context.Context, event campaign.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns everything published so far.
func (r *EventRecorder) Events() []campaign.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]campaign.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Named returns the events with the given name.
func (r *EventRecorder) Named(name string) []campaign.Event {
	var out []campaign.Event
	for _, e := range r.Events() {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}
