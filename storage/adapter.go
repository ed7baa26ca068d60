package storage

import (
	"context"

	"github.com/kbukum/cloudstore/provider"
)

var _ provider.Provider = (*Component)(nil)

// IsAvailable reports whether the adapter has been started.
func (c *Component) IsAvailable(_ context.Context) bool {
	return c.bucket != nil
}
