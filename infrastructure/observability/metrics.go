package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cardswap/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the cardswap service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	// Metric instruments
	interactionsCounter    metric.Int64Counter
	tradesProposedCounter  metric.Int64Counter
	tradesCompletedCounter metric.Int64Counter
	tradesCancelledCounter metric.Int64Counter
	tradesOpenGauge        metric.Int64UpDownCounter
	settlementHist         metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.markInitialized()
		return nil
	}

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.Infof("Using OTLP metric exporter: %s", mp.config.OTelOTLPEndpoint)

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.markInitialized()
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.InitializeWithReader(reader); err != nil {
		return err
	}

	// Set as global meter provider
	otel.SetMeterProvider(mp.meterProvider)
	return nil
}

// InitializeWithReader builds the meter provider on an explicit reader
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	// Schemaless so the merge never conflicts with the SDK default schema
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("cardswap")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) markInitialized() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.initialized = true
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.interactionsCounter, err = mp.meter.Int64Counter(
		InteractionsTotal,
		metric.WithDescription("Total number of Discord interactions handled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create interactions counter: %w", err)
	}

	mp.tradesProposedCounter, err = mp.meter.Int64Counter(
		TradesProposedTotal,
		metric.WithDescription("Total number of trades proposed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create trades proposed counter: %w", err)
	}

	mp.tradesCompletedCounter, err = mp.meter.Int64Counter(
		TradesCompletedTotal,
		metric.WithDescription("Total number of trades settled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create trades completed counter: %w", err)
	}

	mp.tradesCancelledCounter, err = mp.meter.Int64Counter(
		TradesCancelledTotal,
		metric.WithDescription("Total number of trades cancelled, by reason"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create trades cancelled counter: %w", err)
	}

	// UpDownCounter for gauge-like behavior
	mp.tradesOpenGauge, err = mp.meter.Int64UpDownCounter(
		TradesOpen,
		metric.WithDescription("Current number of pending or active trades"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create open trades gauge: %w", err)
	}

	mp.settlementHist, err = mp.meter.Float64Histogram(
		TradeSettlement,
		metric.WithDescription("Time from proposal to settlement in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(60, 300, 900, 3600, 4*3600, 12*3600, 24*3600),
	)
	if err != nil {
		return fmt.Errorf("failed to create settlement histogram: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordInteraction records a Discord interaction being handled
func (mp *MetricsProvider) RecordInteraction(interactionType string) {
	if !mp.isEnabled() {
		return
	}

	mp.interactionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelType, interactionType)),
	)
}

// RecordTradeProposed counts a new proposal and the open trade it creates
func (mp *MetricsProvider) RecordTradeProposed(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}

	mp.tradesProposedCounter.Add(ctx, 1)
	mp.tradesOpenGauge.Add(ctx, 1)
}

// RecordTradeCompleted counts a settlement and its duration
func (mp *MetricsProvider) RecordTradeCompleted(ctx context.Context, sinceProposal time.Duration) {
	if !mp.isEnabled() {
		return
	}

	mp.tradesCompletedCounter.Add(ctx, 1)
	mp.tradesOpenGauge.Add(ctx, -1)
	mp.settlementHist.Record(ctx, sinceProposal.Seconds())
}

// RecordTradeCancelled counts a cancellation by reason
func (mp *MetricsProvider) RecordTradeCancelled(ctx context.Context, reason string) {
	if !mp.isEnabled() {
		return
	}

	mp.tradesCancelledCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(LabelReason, reason)),
	)
	mp.tradesOpenGauge.Add(ctx, -1)
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider. A nil provider records nothing.
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
