package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fundledger/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"google.golang.org/grpc"
)

// MetricsProvider manages OpenTelemetry metrics for the ledger
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	confirmationsCounter       metric.Int64Counter
	confirmationDurationHist   metric.Float64Histogram
	variancesCounter           metric.Int64Counter
	investmentsFundedCounter   metric.Int64Counter
	fundTotalsRecomputeCounter metric.Int64Counter
	eventsPublishedCounter     metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
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
			otlpmetricgrpc.WithDialOption(grpc.WithUserAgent("fundledger")),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)

	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("fundledger")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.confirmationsCounter, err = mp.meter.Int64Counter(
		ConfirmationsTotal,
		metric.WithDescription("Wire confirmations attempted, by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create confirmations counter: %w", err)
	}

	mp.confirmationDurationHist, err = mp.meter.Float64Histogram(
		ConfirmationDuration,
		metric.WithDescription("Duration of wire confirmations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create confirmation duration histogram: %w", err)
	}

	mp.variancesCounter, err = mp.meter.Int64Counter(
		VariancesTotal,
		metric.WithDescription("Confirmed wires whose amount differed from the expected amount"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create variances counter: %w", err)
	}

	mp.investmentsFundedCounter, err = mp.meter.Int64Counter(
		InvestmentsFunded,
		metric.WithDescription("Investments promoted to FUNDED"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create investments funded counter: %w", err)
	}

	mp.fundTotalsRecomputeCounter, err = mp.meter.Int64Counter(
		FundTotalsRecomputedTotal,
		metric.WithDescription("Fund totals recomputed outside the confirmation path"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fund totals counter: %w", err)
	}

	mp.eventsPublishedCounter, err = mp.meter.Int64Counter(
		EventsPublishedTotal,
		metric.WithDescription("Events published to NATS"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create events published counter: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp == nil {
		return nil
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordConfirmation records a confirmation attempt and its duration.
// outcome is OutcomeConfirmed or the rejecting error code.
func (mp *MetricsProvider) RecordConfirmation(outcome string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(attribute.String(LabelOutcome, outcome))
	mp.confirmationsCounter.Add(context.Background(), 1, attrs)
	mp.confirmationDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// RecordVariance records a confirmed wire that did not match its expected amount
func (mp *MetricsProvider) RecordVariance(direction string) {
	if !mp.isEnabled() {
		return
	}

	mp.variancesCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelDirection, direction)),
	)
}

// RecordInvestmentFunded records an investment reaching FUNDED
func (mp *MetricsProvider) RecordInvestmentFunded() {
	if !mp.isEnabled() {
		return
	}

	mp.investmentsFundedCounter.Add(context.Background(), 1)
}

// RecordFundTotalsRecomputed records a repair recompute of a fund aggregate
func (mp *MetricsProvider) RecordFundTotalsRecomputed(drifted bool) {
	if !mp.isEnabled() {
		return
	}

	mp.fundTotalsRecomputeCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelDrifted, strconv.FormatBool(drifted))),
	)
}

// RecordEventPublished records an event published to NATS
func (mp *MetricsProvider) RecordEventPublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.eventsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// isEnabled checks if metrics are enabled and have instruments to record to
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
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

// GetMetrics returns the global metrics provider. Recording on an uninitialized provider is a no-op.
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	return globalMetrics.Shutdown(ctx)
}
