package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/observability"
)

// BackendFactory builds a Backend from the adapter configuration. Each
// provider package reads its own section of cfg.
type BackendFactory func(ctx context.Context, cfg Config, log *logger.Logger) (Backend, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]BackendFactory)
)

// RegisterFactory registers a backend factory for the given provider name.
// Provider packages call this from an init function, so importing the
// package (e.g. _ "github.com/kbukum/cloudstore/storage/s3") makes it
// available to New.
func RegisterFactory(name string, f BackendFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New validates cfg, builds the configured backend and wraps it in a Bucket.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Bucket, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	l := logger.OrNop(log).WithComponent("storage." + cfg.Provider)
	l.Info("initializing storage", logger.ObjectFields(cfg.Provider, cfg.Bucket, ""))

	backend, err := f(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("storage: init %s backend: %w", cfg.Provider, err)
	}

	metrics, err := observability.NewStorageMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		l.Warn("storage metrics disabled", logger.ErrorFields("init", err))
	}

	return NewBucket(backend,
		WithLogger(l),
		WithMetrics(metrics),
		WithBasePath(cfg.BasePath),
		WithTransferConfig(cfg.Transfer),
	), nil
}
