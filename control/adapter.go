// Package control
// Author: momentics <momentics@gmail.com>
//
// Adapter implementing api.Control using control package primitives.

package control

import (
	"github.com/rgooch/karma-sub004/api"
)

// Adapter bundles config, metrics and debug probes behind api.Control.
type Adapter struct {
	config  *ConfigStore
	metrics *MetricsRegistry
	debug   *DebugProbes
}

var _ api.Control = (*Adapter)(nil)

// NewAdapter creates an adapter with default config and platform probes.
func NewAdapter() *Adapter {
	adapter := &Adapter{
		config:  NewConfigStore(),
		metrics: NewMetricsRegistry(),
		debug:   NewDebugProbes(),
	}
	RegisterPlatformProbes(adapter.debug)
	return adapter
}

// Config returns the underlying store.
func (c *Adapter) Config() *ConfigStore { return c.config }

// Metrics returns the underlying metrics registry.
func (c *Adapter) Metrics() *MetricsRegistry { return c.metrics }

func (c *Adapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

func (c *Adapter) SetConfig(cfg map[string]any) error {
	c.config.SetConfig(cfg)
	return nil
}

func (c *Adapter) Stats() map[string]any {
	stats := c.metrics.GetSnapshot()
	debugStats := c.debug.DumpState()
	combined := make(map[string]any)
	for k, v := range stats {
		combined[k] = v
	}
	for k, v := range debugStats {
		combined["debug."+k] = v
	}
	return combined
}

func (c *Adapter) OnReload(fn func()) {
	c.config.OnReload(fn)
}

func (c *Adapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}
