package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/cloudstore/component"
	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/observability"
	"github.com/kbukum/cloudstore/storage"
)

const shutdownTimeout = 15 * time.Second

// runTask starts telemetry and storage as components, runs task against the
// bucket, and stops the components in reverse order. SIGINT and SIGTERM
// cancel the task context.
func runTask(ctx context.Context, cfg *CLIConfig, logOut io.Writer, task func(ctx context.Context, b *storage.Bucket) error) error {
	log := logger.NewWithWriter(logOut, &cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	registry := component.NewRegistry(log)
	telemetry := observability.NewTelemetry(cfg.Telemetry, cfg.Name, cfg.Version, log)
	store := storage.NewComponent(cfg.Storage, log)
	for _, c := range []component.Component{telemetry, store} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			log.Info("received signal, canceling", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	if err := registry.StartAll(taskCtx); err != nil {
		return err
	}
	log.Debug("components started", logger.Fields("provider", cfg.Storage.Provider, "bucket", cfg.Storage.Bucket))

	taskErr := task(taskCtx, store.Bucket())

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := registry.StopAll(stopCtx); err != nil {
		log.Error("shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		if taskErr == nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return taskErr
}
