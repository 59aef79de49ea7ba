package config

import "sync/atomic"

// Runtime provides atomic access to configuration for hot-reload support.
// It uses sync/atomic.Pointer for lock-free reads, allowing in-flight
// authorization decisions to complete with the old config while new
// requests see the updated config.
//
// Store() is called by the config watcher when a file change is detected.
// Get() is called per decision so policy changes (admin list, endpoint
// lists, decision TTL) take effect without a restart.
type Runtime struct {
	ptr atomic.Pointer[Config]
}

// NewRuntime creates a new Runtime with the given initial configuration.
// The initial config is stored and immediately available via Get().
func NewRuntime(initial *Config) *Runtime {
	r := &Runtime{}
	r.ptr.Store(initial)
	return r
}

// Get returns the current configuration atomically. This is a lock-free
// read; components call it per-operation to observe the latest config.
func (r *Runtime) Get() *Config {
	return r.ptr.Load()
}

// Store atomically swaps in a new configuration. Readers see either the
// old config or the new one, never an inconsistent state.
func (r *Runtime) Store(cfg *Config) {
	r.ptr.Store(cfg)
}

var _ RuntimeConfig = (*Runtime)(nil)
