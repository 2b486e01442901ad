// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown releases every resource a component still holds.
type GracefulShutdown interface {
	// Shutdown stops accepting new work, releases all resources and
	// returns the first failure encountered.
	Shutdown() error
}
