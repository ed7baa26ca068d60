package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/cloudstore/component"
	"github.com/kbukum/cloudstore/logger"
)

// Component wraps a Bucket and implements component.Component for lifecycle
// management.
type Component struct {
	bucket *Bucket
	cfg    Config
	log    *logger.Logger
}

// NewComponent creates a storage component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	return &Component{
		cfg: cfg,
		log: logger.OrNop(log).WithComponent("storage"),
	}
}

// Bucket returns the underlying adapter, or nil if not started.
func (c *Component) Bucket() *Bucket {
	return c.bucket
}

var _ component.Component = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start builds the adapter.
func (c *Component) Start(ctx context.Context) error {
	b, err := New(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.bucket = b
	return nil
}

// Stop releases the provider client.
func (c *Component) Stop(_ context.Context) error {
	if c.bucket == nil {
		return nil
	}
	err := c.bucket.Close()
	c.bucket = nil
	return err
}

// Health lists one key to check the bucket is reachable.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.bucket == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "storage not initialized",
		}
	}

	if err := c.bucket.Ping(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("health probe failed: %v", err),
		}
	}

	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("provider=%s bucket=%s", c.bucket.Provider(), c.bucket.Name()),
	}
}
