// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with typed accessors, channel-layer
// defaults and reload propagation.

package control

import (
	"sync"
)

// Configuration keys understood by the channel layer.
const (
	KeyBlockSize      = "channel.block_size"
	KeyConnBufferSize = "conn.buffer_size"
	KeyLargeThreshold = "mmap.large_threshold"
	KeyUnixDir        = "dock.unix_dir"
	KeyBacklog        = "dock.backlog"
)

// Defaults returns the stock channel-layer configuration.
func Defaults() map[string]any {
	return map[string]any{
		KeyBlockSize:      4096,
		KeyConnBufferSize: 4096,
		KeyLargeThreshold: int64(1 << 20),
		KeyUnixDir:        "/tmp/.KARMA_CONNECTIONS",
		KeyBacklog:        16,
	}
}

// ConfigStore is a dynamic key/value map with atomic snapshot and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func()
}

// NewConfigStore initializes a new config store seeded with Defaults.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config:    Defaults(),
		listeners: make([]func(), 0),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	copy := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		copy[k] = v
	}
	return copy
}

// SetConfig merges new values and notifies reload listeners.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
	listeners := append([]func(){}, cs.listeners...)
	cs.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// Int returns key as an int, or def when absent or not numeric.
func (cs *ConfigStore) Int(key string, def int) int {
	cs.mu.RLock()
	v, ok := cs.config[key]
	cs.mu.RUnlock()
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// Int64 returns key as an int64, or def when absent or not numeric.
func (cs *ConfigStore) Int64(key string, def int64) int64 {
	cs.mu.RLock()
	v, ok := cs.config[key]
	cs.mu.RUnlock()
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	}
	return def
}

// String returns key as a string, or def when absent.
func (cs *ConfigStore) String(key string, def string) string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if s, ok := cs.config[key].(string); ok {
		return s
	}
	return def
}
