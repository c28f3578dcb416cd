package infrastructure

import (
	"context"
	"errors"
	"testing"

	"cardswap/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher records what reaches the real publisher
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func TestNATSTransactionalPublisher_FlushPublishesInOrder(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	proposed := events.TradeProposedEvent{TradeID: 1, ProposerID: 100}
	matched := events.TradeMatchedEvent{TradeID: 1, ProposerID: 100, AcceptorID: 200}

	require.NoError(t, transPublisher.Publish(proposed))
	require.NoError(t, transPublisher.Publish(matched))
	assert.Empty(t, mockPublisher.PublishedEvents, "nothing leaves before flush")

	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Equal(t, []events.Event{proposed, matched}, mockPublisher.PublishedEvents)

	// A second flush has nothing left to send
	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Len(t, mockPublisher.PublishedEvents, 2)
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(events.TradeCancelledEvent{TradeID: 1, Reason: "user"}))
	transPublisher.Discard()
	require.NoError(t, transPublisher.Flush(context.Background()))

	assert.Empty(t, mockPublisher.PublishedEvents)
}

func TestNATSTransactionalPublisher_FlushIgnoresPublishErrors(t *testing.T) {
	mockPublisher := &MockEventPublisher{PublishError: errors.New("nats down")}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(events.TradeCompletedEvent{TradeID: 1}))
	assert.NoError(t, transPublisher.Flush(context.Background()))
}

func TestNoopEventPublisher_LocalHandlers(t *testing.T) {
	publisher := NewNoopEventPublisher()

	var received []events.Event
	publisher.RegisterLocalHandler(events.EventTypeTradeCompleted, func(ctx context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	})
	publisher.RegisterLocalHandler(events.EventTypeTradeCompleted, func(ctx context.Context, event events.Event) error {
		return errors.New("second handler fails")
	})

	transPublisher := NewNATSTransactionalPublisher(publisher)
	completed := events.TradeCompletedEvent{TradeID: 7, ProposerID: 100, AcceptorID: 200}
	require.NoError(t, transPublisher.Publish(completed))
	require.NoError(t, transPublisher.Publish(events.TradeProposedEvent{TradeID: 8}))

	assert.Empty(t, received, "handlers run on flush, not on publish")

	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Equal(t, []events.Event{completed}, received)
}
