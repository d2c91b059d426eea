// Package events is the in-process publish/subscribe layer. It knows nothing
// about leads or pools; concrete events live in internal/events.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is anything that can travel over a Bus.
type Event interface {
	// EventName routes the event to its subscribers.
	EventName() string
	// EventID is unique per published occurrence so handlers can drop repeats.
	EventID() uuid.UUID
	OccurredAt() time.Time
}

// BaseEvent carries the envelope every event embeds.
type BaseEvent struct {
	ID        uuid.UUID `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) EventID() uuid.UUID { return e.ID }

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a fresh id and the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow ordinary functions to be used as handlers.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events by EventName.
type Bus interface {
	// Publish hands the event to its handlers without waiting for them.
	Publish(ctx context.Context, event Event)

	// PublishSync runs every handler and returns their joined errors.
	PublishSync(ctx context.Context, event Event) error

	Subscribe(eventName string, handler Handler)
}

// SubscribeTo registers fn for events of type E. Events published under the
// same name with a different concrete type are ignored.
func SubscribeTo[E Event](bus Bus, fn func(ctx context.Context, event E) error) {
	var zero E
	bus.Subscribe(zero.EventName(), HandlerFunc(func(ctx context.Context, event Event) error {
		typed, ok := event.(E)
		if !ok {
			return nil
		}
		return fn(ctx, typed)
	}))
}
