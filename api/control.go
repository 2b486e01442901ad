// File: api/control.go
// Author: momentics <momentics@gmail.com>
//
// Runtime configuration surface of the channel layer.

package api

// Control is the configuration and observability handle a registry is
// built with. SetConfig merges keys into the live configuration and runs
// every OnReload listener; registries use that to resize buffers of
// channels opened afterwards. Stats merges counters with debug probe output
// under a "debug." prefix.
type Control interface {
	GetConfig() map[string]any
	SetConfig(cfg map[string]any) error
	Stats() map[string]any
	OnReload(fn func())
	RegisterDebugProbe(name string, fn func() any)
}
