package storage

import (
	"context"
	"slices"
	"testing"

	"github.com/kbukum/cloudstore/component"
	"github.com/kbukum/cloudstore/logger"
)

func registerMock(t *testing.T) *mockBackend {
	t.Helper()
	m := newMockBackend("unit")
	RegisterFactory("memory", func(_ context.Context, cfg Config, _ *logger.Logger) (Backend, error) {
		m.name = cfg.Bucket
		return m, nil
	})
	return m
}

func TestNew_BuildsBucketFromFactory(t *testing.T) {
	registerMock(t)
	b, err := New(context.Background(), Config{Provider: "memory", Bucket: "data", BasePath: "/in", Transfer: TransferConfig{Concurrency: 3}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Name() != "data" || b.BasePath() != "in" || b.TransferConfig().Concurrency != 3 {
		t.Errorf("unexpected bucket %s %q %+v", b.Name(), b.BasePath(), b.TransferConfig())
	}
	if !slices.Contains(Providers(), "memory") {
		t.Errorf("expected memory in %v", Providers())
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(context.Background(), Config{Provider: "memory"}, nil); err == nil {
		t.Error("expected validation error")
	}
	if _, err := New(context.Background(), Config{Provider: "gcs", Bucket: "b"}, nil); err == nil {
		t.Error("expected error for an unregistered provider")
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	m := registerMock(t)
	c := NewComponent(Config{Provider: "memory", Bucket: "data"}, nil)

	if c.Name() != "storage" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if c.IsAvailable(context.Background()) {
		t.Error("component should not be available before Start")
	}
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !c.IsAvailable(context.Background()) || c.Bucket() == nil {
		t.Fatal("component should be available after Start")
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s: %s", h.Status, h.Message)
	}

	m.failOn = "list"
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy when the probe fails, got %s", h.Status)
	}

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !m.closed || c.Bucket() != nil {
		t.Error("Stop should close the backend and drop the bucket")
	}
}

func TestComponent_StartFailure(t *testing.T) {
	c := NewComponent(Config{Provider: "memory"}, nil)
	if err := c.Start(context.Background()); err == nil {
		t.Error("expected start to fail on invalid config")
	}
}
