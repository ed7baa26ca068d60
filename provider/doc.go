// Package provider defines the small capability interfaces cloudstore builds on.
//
//   - Iterator[T]: pull-based sequence, used for lazy object listings
//   - RequestResponse[I, O]: one input, one output (download or upload an object)
//
// Middleware[I, O] wraps a RequestResponse with logging, tracing or metrics:
//
//	download := provider.Chain(
//	    provider.WithLogging[storage.ObjectRef, []byte](log),
//	    provider.WithTracing[storage.ObjectRef, []byte](),
//	    provider.WithMetrics[storage.ObjectRef, []byte](metrics, "s3"),
//	)(storage.NewDownloadProvider("download", bucket))
package provider
