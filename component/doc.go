// Package component defines the lifecycle contract shared by the storage
// component and the telemetry component, and a registry that starts them in
// order and stops them in reverse.
package component
