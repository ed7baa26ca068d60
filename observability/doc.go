// Package observability wires OpenTelemetry tracing and metrics into cloudstore.
//
// Without InitTracer/InitMeter the global otel providers are no-ops, so spans
// and instruments created by the storage package cost almost nothing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("cloudstore"), log)
//	defer tp.Shutdown(ctx)
//
//	metrics, err := observability.NewStorageMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.RecordOperation(ctx, "s3", "get", "ok", time.Since(start))
//
// The Telemetry component does both behind the component lifecycle.
package observability
