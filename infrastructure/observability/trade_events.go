package observability

import (
	"context"

	"cardswap/domain/events"
)

// TradeEventHandlers returns the local event handlers that feed the trade metrics
func TradeEventHandlers(mp *MetricsProvider) map[events.EventType]func(context.Context, events.Event) error {
	return map[events.EventType]func(context.Context, events.Event) error{
		events.EventTypeTradeProposed: func(ctx context.Context, event events.Event) error {
			mp.RecordTradeProposed(ctx)
			return nil
		},
		events.EventTypeTradeCompleted: func(ctx context.Context, event events.Event) error {
			completed, ok := event.(events.TradeCompletedEvent)
			if !ok {
				return nil
			}
			mp.RecordTradeCompleted(ctx, completed.Duration)
			return nil
		},
		events.EventTypeTradeCancelled: func(ctx context.Context, event events.Event) error {
			cancelled, ok := event.(events.TradeCancelledEvent)
			if !ok {
				return nil
			}
			mp.RecordTradeCancelled(ctx, cancelled.Reason)
			return nil
		},
	}
}
