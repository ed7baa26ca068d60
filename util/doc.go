// Package util holds small string helpers shared by the storage adapters and the CLI.
package util
