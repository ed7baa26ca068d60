package provider

import (
	"context"
	"time"

	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/observability"
)

// WithMetrics returns a Middleware that records each Execute call as a
// storage operation for the given backend label.
func WithMetrics[I, O any](metrics *observability.StorageMetrics, backend string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, metrics: metrics, backend: backend}
	}
}

type metricsRR[I, O any] struct {
	inner   RequestResponse[I, O]
	metrics *observability.StorageMetrics
	backend string
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	output, err := m.inner.Execute(ctx, input)

	status := "ok"
	if err != nil {
		status = "error"
		m.metrics.RecordError(ctx, m.backend, m.inner.Name(), string(errors.Wrap(err).Code))
	}
	m.metrics.RecordOperation(ctx, m.backend, m.inner.Name(), status, time.Since(start))
	return output, err
}
