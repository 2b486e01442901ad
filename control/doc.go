// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for the channel layer.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads with typed accessors and stock defaults
//   - Reload listeners
//   - Counters for channel lifecycle and byte traffic
//   - State export, debug hooks, and probe registration
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
