package infrastructure

import (
	"context"

	"cardswap/domain/events"
)

// NoopEventPublisher publishes nowhere but still runs local handlers.
// Used when NATS is disabled and in tests.
type NoopEventPublisher struct {
	local localHandlers
}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish hands the event to local handlers only
func (n *NoopEventPublisher) Publish(event events.Event) error {
	n.local.dispatch(context.Background(), event)
	return nil
}

// RegisterLocalHandler registers a handler that will be invoked locally for events
func (n *NoopEventPublisher) RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler) {
	n.local.register(eventType, handler)
}
