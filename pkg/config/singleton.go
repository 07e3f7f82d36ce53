package config

import (
	"fmt"
	"sync/atomic"
)

// current is the process-wide configuration. The CLI sets it once flags are
// parsed; the config manager replaces it on every successful reload.
var current atomic.Pointer[Config]

// Initialize loads path and installs it as the process-wide configuration
// unless one is already installed, in which case the call is a no-op.
func Initialize(path string) error {
	if current.Load() != nil {
		return nil
	}
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return err
	}
	current.CompareAndSwap(nil, cfg)
	return nil
}

// GetConfig returns the process-wide configuration, or nil before it is set.
// Components that are handed a *Config should use that instead.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig installs cfg as the process-wide configuration.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig loads path and installs it. A file that fails to load or
// validate leaves the installed configuration untouched.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	current.Store(cfg)
	return nil
}

// MustGetConfig is GetConfig for callers that run after startup. It panics
// when no configuration is installed.
func MustGetConfig() *Config {
	cfg := current.Load()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
