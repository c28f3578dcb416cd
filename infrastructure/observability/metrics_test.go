package observability

import (
	"context"
	"testing"
	"time"

	"cardswap/config"
	"cardswap/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.InitializeWithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestTradeEventHandlers_FeedMetrics(t *testing.T) {
	mp, reader := newTestProvider(t)
	handlers := TradeEventHandlers(mp)
	ctx := context.Background()

	dispatch := func(event events.Event) {
		require.NoError(t, handlers[event.Type()](ctx, event))
	}

	dispatch(events.TradeProposedEvent{TradeID: 1})
	dispatch(events.TradeProposedEvent{TradeID: 2})
	dispatch(events.TradeProposedEvent{TradeID: 3})
	dispatch(events.TradeCompletedEvent{TradeID: 1, Duration: 90 * time.Second})
	dispatch(events.TradeCancelledEvent{TradeID: 2, Reason: "expired"})

	metrics := collect(t, reader)

	assert.Equal(t, int64(3), sumValue(t, metrics[TradesProposedTotal]))
	assert.Equal(t, int64(1), sumValue(t, metrics[TradesCompletedTotal]))
	assert.Equal(t, int64(1), sumValue(t, metrics[TradesOpen]))

	cancelled, ok := metrics[TradesCancelledTotal].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, cancelled.DataPoints, 1)
	reason, ok := cancelled.DataPoints[0].Attributes.Value(attribute.Key(LabelReason))
	require.True(t, ok)
	assert.Equal(t, "expired", reason.AsString())

	settlement, ok := metrics[TradeSettlement].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, settlement.DataPoints, 1)
	assert.Equal(t, uint64(1), settlement.DataPoints[0].Count)
	assert.InDelta(t, 90.0, settlement.DataPoints[0].Sum, 0.001)
}

func TestMetricsProvider_DisabledRecordsNothing(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = false
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		mp.RecordTradeProposed(context.Background())
		mp.RecordInteraction(InteractionTypeCommand)
	})

	var nilProvider *MetricsProvider
	assert.NotPanics(t, func() {
		nilProvider.RecordTradeCancelled(context.Background(), "user")
	})
}
