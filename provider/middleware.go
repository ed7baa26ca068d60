package provider

// Middleware wraps a RequestResponse provider. Storage uses it to add
// logging, spans and metrics around storage requests.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain stacks middlewares around a provider, first argument outermost:
// Chain(logging, metrics)(p) logs before the metrics wrapper sees the call.
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(p RequestResponse[I, O]) RequestResponse[I, O] {
		wrapped := p
		for i := len(middlewares) - 1; i >= 0; i-- {
			wrapped = middlewares[i](wrapped)
		}
		return wrapped
	}
}
