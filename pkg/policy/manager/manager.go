package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/mpl-builtins/pkg/config"
)

// ConfigManager owns the configuration file of a running process. It loads
// the file, hands the builtins section to a Reloader and, while watching,
// repeats that whenever the file changes. A file that fails to load or apply
// leaves the previous configuration active.
type ConfigManager struct {
	path     string
	reloader Reloader
	logger   *slog.Logger
	debounce time.Duration
	onReload func(*config.Config, error)

	mu              sync.RWMutex
	current         *config.Config
	lastLoadTime    time.Time
	lastAttemptTime time.Time
	lastLoadError   error
	reloads         int

	watchMu sync.Mutex
	watcher *FileWatcher
}

// Option configures a ConfigManager.
type Option func(*ConfigManager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *ConfigManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDebounce sets the quiet period between a file change and the reload.
func WithDebounce(d time.Duration) Option {
	return func(m *ConfigManager) {
		if d > 0 {
			m.debounce = d
		}
	}
}

// WithOnReload registers a hook called after every reload attempt triggered
// by the watcher. cfg is nil when the attempt failed.
func WithOnReload(fn func(cfg *config.Config, err error)) Option {
	return func(m *ConfigManager) {
		m.onReload = fn
	}
}

// NewConfigManager creates a manager for the configuration file at path.
// It does not load the file; call Load before serving.
func NewConfigManager(path string, reloader Reloader, opts ...Option) (*ConfigManager, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	if reloader == nil {
		return nil, fmt.Errorf("reloader cannot be nil")
	}

	m := &ConfigManager{
		path:     path,
		reloader: reloader,
		logger:   slog.Default(),
		debounce: config.DefaultServeWatchDebounce,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "config_manager")
	return m, nil
}

// Load reads, validates and applies the configuration file. On success the
// loaded configuration also becomes the process-wide one returned by
// config.GetConfig.
func (m *ConfigManager) Load() (*config.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	startTime := time.Now()
	m.lastAttemptTime = startTime

	cfg, err := config.LoadConfigWithEnvOverrides(m.path)
	if err != nil {
		m.lastLoadError = &LoadError{FilePath: m.path, Cause: err}
		m.logger.Error("failed to load configuration",
			"path", m.path,
			"error", err,
		)
		return nil, m.lastLoadError
	}

	if err := m.reloader.Reload(cfg.Builtins); err != nil {
		m.lastLoadError = &ApplyError{FilePath: m.path, Cause: err}
		m.logger.Error("failed to apply configuration",
			"path", m.path,
			"error", err,
		)
		return nil, m.lastLoadError
	}

	if m.current != nil {
		m.reloads++
	}
	m.current = cfg
	m.lastLoadTime = time.Now()
	m.lastLoadError = nil
	config.SetConfig(cfg)

	m.logger.Info("configuration loaded",
		"path", m.path,
		"families", len(cfg.Builtins.EnabledFamilies()),
		"strict", cfg.Builtins.Strict,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return cfg, nil
}

// Watch blocks until ctx is cancelled, reloading on every debounced change
// to the configuration file. Deleting the file does not unload anything;
// the next create is picked up as a reload.
func (m *ConfigManager) Watch(ctx context.Context) error {
	m.watchMu.Lock()
	if m.watcher != nil {
		m.watchMu.Unlock()
		return fmt.Errorf("already watching %q", m.path)
	}
	fw, err := NewFileWatcher(&FileWatcherConfig{
		Path:             m.path,
		DebounceInterval: m.debounce,
	}, m.logger)
	if err != nil {
		m.watchMu.Unlock()
		return err
	}
	m.watcher = fw
	m.watchMu.Unlock()

	defer func() {
		m.watchMu.Lock()
		m.watcher = nil
		m.watchMu.Unlock()
	}()

	return fw.Watch(ctx, m.handleEvent)
}

// StopWatching stops a running Watch.
func (m *ConfigManager) StopWatching() {
	m.watchMu.Lock()
	fw := m.watcher
	m.watchMu.Unlock()
	if fw != nil {
		fw.Stop()
	}
}

func (m *ConfigManager) handleEvent(event ReloadEvent) {
	if event.Type == ReloadEventDelete {
		m.logger.Warn("configuration file removed, keeping current configuration",
			"path", event.FilePath,
		)
		return
	}

	m.logger.Info("configuration change detected",
		"path", event.FilePath,
		"event", event.Type.String(),
	)

	cfg, err := m.Load()
	if m.onReload != nil {
		m.onReload(cfg, err)
	}
}

// Config returns the last successfully loaded configuration, or nil.
func (m *ConfigManager) Config() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Status reports the state of the last load.
func (m *ConfigManager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		Path:            m.path,
		LastLoadTime:    m.lastLoadTime,
		LastAttemptTime: m.lastAttemptTime,
		Reloads:         m.reloads,
	}
	if m.lastLoadError != nil {
		s.LastError = m.lastLoadError.Error()
	}
	return s
}
