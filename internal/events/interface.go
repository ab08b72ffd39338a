package events

import (
	"context"
)

// EventBus routes published events to matching subscriptions.
type EventBus interface {
	// Publish delivers an event to the bus, returning an error if the bus
	// is not running or its buffer is full.
	Publish(ctx context.Context, event Event) error

	// PublishAsync delivers an event without blocking the caller. Failures
	// are logged, not returned.
	PublishAsync(event Event)

	// Subscribe registers a handler for events matching the filter. The
	// subscription is removed automatically when ctx is cancelled.
	Subscribe(ctx context.Context, subscriber string, filter EventFilter, handler EventHandler) (*Subscription, error)

	// Unsubscribe removes a subscription by ID.
	Unsubscribe(subscriptionID string) error

	// GetSubscriptions lists active subscriptions.
	GetSubscriptions() []*Subscription

	// RecentEvents returns up to limit of the most recently delivered
	// events, newest first.
	RecentEvents(limit int) []Event

	// GetStats reports bus counters.
	GetStats() EventStats

	// Start begins event processing.
	Start(ctx context.Context) error

	// Stop halts processing, waiting up to ctx's deadline for the worker
	// to drain.
	Stop(ctx context.Context) error

	// Health reports whether the bus is running.
	Health() error
}

// EventBusConfig tunes the bus.
type EventBusConfig struct {
	// BufferSize is the publish channel capacity. Publishes beyond it are
	// dropped with an error rather than blocking.
	BufferSize int

	// MaxRecentEvents caps the in-memory ring of delivered events served
	// by RecentEvents.
	MaxRecentEvents int
}

// DefaultEventBusConfig returns the standard tuning.
func DefaultEventBusConfig() EventBusConfig {
	return EventBusConfig{
		BufferSize:      256,
		MaxRecentEvents: 100,
	}
}
