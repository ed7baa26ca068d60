package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/cloudstore/component"
	"github.com/kbukum/cloudstore/logger"
)

// Config selects the telemetry exporters. An empty Endpoint leaves the
// global no-op providers in place.
type Config struct {
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// Telemetry is a component that owns the tracer and meter providers.
type Telemetry struct {
	cfg         Config
	serviceName string
	version     string
	log         *logger.Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var _ component.Component = (*Telemetry)(nil)

// NewTelemetry creates the telemetry component.
func NewTelemetry(cfg Config, serviceName, version string, log *logger.Logger) *Telemetry {
	return &Telemetry{
		cfg:         cfg,
		serviceName: serviceName,
		version:     version,
		log:         logger.OrNop(log).WithComponent("observability"),
	}
}

// Name returns the component name.
func (t *Telemetry) Name() string { return "telemetry" }

// Enabled reports whether an exporter endpoint is configured.
func (t *Telemetry) Enabled() bool { return t.cfg.Endpoint != "" }

// Start installs the OTLP tracer and meter providers when enabled.
func (t *Telemetry) Start(ctx context.Context) error {
	if !t.Enabled() {
		return nil
	}

	tc := DefaultTracerConfig(t.serviceName)
	tc.ServiceVersion = t.version
	tc.Endpoint = t.cfg.Endpoint
	tc.Insecure = t.cfg.Insecure
	if t.cfg.SampleRate > 0 {
		tc.SampleRate = t.cfg.SampleRate
	}
	tp, err := InitTracer(ctx, tc, t.log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	mc := DefaultMeterConfig(t.serviceName)
	mc.ServiceVersion = t.version
	mc.Endpoint = t.cfg.Endpoint
	mc.Insecure = t.cfg.Insecure
	mp, err := InitMeter(ctx, mc, t.log)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("telemetry: %w", err)
	}

	t.tp, t.mp = tp, mp
	return nil
}

// Stop flushes and shuts down the providers.
func (t *Telemetry) Stop(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
		t.tp = nil
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
		t.mp = nil
	}
	return errors.Join(errs...)
}

// Health reports whether the exporters are running.
func (t *Telemetry) Health(_ context.Context) component.Health {
	h := component.Health{Name: t.Name(), Status: component.StatusHealthy}
	switch {
	case !t.Enabled():
		h.Message = "disabled"
	case t.tp == nil:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}
