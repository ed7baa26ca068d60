// Package version exposes build metadata for the CLI and the user agent sent
// to storage providers.
package version
