// File: api/debug.go
// Author: momentics <momentics@gmail.com>

package api

// Debug is a set of named probes evaluated on demand, such as the count of
// open channels or buffer pool accounting.
type Debug interface {
	DumpState() map[string]any
	RegisterProbe(name string, fn func() any)
}
