// Package logger provides structured logging for cloudstore using zerolog.
//
// Adapters never reach for a package global. Each one receives a *Logger at
// construction and derives a component-scoped handle from it:
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "cloudstore")
//	s3log := log.WithComponent("storage.s3")
//	s3log.Info("listing", logger.ObjectFields("s3", "my-bucket", "data/"))
//
// The package-level functions (Info, Warn, ...) delegate to a global logger
// and exist for the CLI entry point only.
package logger
