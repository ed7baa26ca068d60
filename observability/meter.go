package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/cloudstore/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a periodic OTLP meter provider as the global provider.
// The caller owns the returned provider and must shut it down.
func InitMeter(ctx context.Context, config MeterConfig, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.OrNop(log).Info("meter initialized", logger.Fields(
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// StorageMetrics holds the instruments recorded by storage adapters.
// A nil *StorageMetrics records nothing.
type StorageMetrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
	bytesTotal        metric.Int64Counter
}

// NewStorageMetrics creates the storage instruments on meter.
func NewStorageMetrics(meter metric.Meter) (*StorageMetrics, error) {
	operationTotal, err := meter.Int64Counter("storage.operation.total",
		metric.WithDescription("Storage operations by provider, operation and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating storage.operation.total counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("storage.operation.duration",
		metric.WithDescription("Duration of storage operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating storage.operation.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("storage.error.total",
		metric.WithDescription("Storage errors by provider, operation and error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating storage.error.total counter: %w", err)
	}

	bytesTotal, err := meter.Int64Counter("storage.bytes.total",
		metric.WithDescription("Bytes read from or written to object storage"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating storage.bytes.total counter: %w", err)
	}

	return &StorageMetrics{
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		errorTotal:        errorTotal,
		bytesTotal:        bytesTotal,
	}, nil
}

// RecordOperation records one finished storage operation.
func (m *StorageMetrics) RecordOperation(ctx context.Context, provider, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
	))
}

// RecordError records a failed operation by error code.
func (m *StorageMetrics) RecordError(ctx context.Context, provider, operation, code string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.String("code", code),
	))
}

// RecordBytes records n bytes moved in direction "read" or "write".
func (m *StorageMetrics) RecordBytes(ctx context.Context, provider, direction string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesTotal.Add(ctx, n, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("direction", direction),
	))
}
