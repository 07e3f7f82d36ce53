package config

import "time"

// Config is the root configuration structure for the MPL builtins runtime.
// It contains the builtin registry settings, the optional call audit log and
// the telemetry stack.
type Config struct {
	// Builtins controls which builtin families are registered and how
	// schema compile failures are reported.
	Builtins BuiltinsConfig `yaml:"builtins"`

	// Serve contains settings for the long-running `serve` command.
	Serve ServeConfig `yaml:"serve"`

	// Evidence contains configuration for the builtin call audit log
	// including backend selection, recorder behaviour and retention.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BuiltinsConfig contains configuration for the builtin registry.
type BuiltinsConfig struct {
	// Families lists the enabled builtin families.
	// Options: "base64", "base64url", "hex", "urlquery", "json", "jsonschema", "yaml"
	// The json family is always enabled.
	// Default: all families
	Families []string `yaml:"families"`

	// Strict makes json.verify_schema and json.match_schema raise on schema
	// compile failures instead of returning them as data.
	// Default: false
	Strict bool `yaml:"strict"`

	// MaxArgumentBytes rejects calls whose encoded arguments exceed this size.
	// 0 means unlimited.
	// Default: 1048576 (1MB)
	MaxArgumentBytes int `yaml:"max_argument_bytes"`
}

// ServeConfig contains configuration for the `serve` command.
type ServeConfig struct {
	// MetricsAddress is the address the Prometheus endpoint listens on.
	// Empty disables the HTTP listener.
	// Default: "127.0.0.1:9090"
	MetricsAddress string `yaml:"metrics_address"`

	// WatchConfig reloads the builtin registry when the config file changes.
	// Default: true
	WatchConfig bool `yaml:"watch_config"`

	// WatchDebounce is the quiet period after a config change before reloading.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TLS serves the HTTP listener over TLS.
	TLS TLSConfig `yaml:"tls"`

	// RateLimit limits calls made through POST /v1/call. The JSON lines
	// session on stdin is not limited.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// TLSConfig contains TLS settings for the serve HTTP listener.
type TLSConfig struct {
	// Enabled indicates whether TLS should be used.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM-encoded certificate file.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key file.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept.
	// Options: "1.2", "1.3"
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// changes. Renewed certificates are picked up without a restart.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"cert_reload_interval"`

	// ClientCAFile is the PEM-encoded CA bundle used to verify client
	// certificates. Required when ClientAuth is set.
	ClientCAFile string `yaml:"client_ca_file"`

	// ClientAuth enables mutual TLS.
	// Options: "" (off), "request", "verify_if_given", "require"
	// Default: ""
	ClientAuth string `yaml:"client_auth"`
}

// RateLimitConfig limits HTTP builtin calls. Zero values mean no limit.
type RateLimitConfig struct {
	// CallsPerSecond is the sustained call rate. Bursts of up to twice the
	// rate are allowed.
	CallsPerSecond int `yaml:"calls_per_second"`

	// CallsPerMinute is the call budget per minute.
	CallsPerMinute int `yaml:"calls_per_minute"`

	// ArgumentBytesPerMinute caps the request body bytes accepted over a
	// rolling minute.
	ArgumentBytesPerMinute int64 `yaml:"argument_bytes_per_minute"`

	// MaxConcurrent caps calls in flight at once.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// EvidenceConfig contains configuration for the builtin call audit log.
type EvidenceConfig struct {
	// Enabled controls whether builtin calls are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend for call records.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains evidence recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains query configuration.
	Query QueryConfig `yaml:"query"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/evidence.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go, modernc.org/sqlite), "sqlite3" (cgo, mattn/go-sqlite3)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains evidence recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// HashArguments stores a SHA-256 digest of the JSON-encoded arguments.
	// Default: true
	HashArguments bool `yaml:"hash_arguments"`

	// MaxFieldLength is the maximum length of stored error messages.
	// Default: 500
	MaxFieldLength int `yaml:"max_field_length"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain call records.
	// 0 means keep records forever (no pruning by age).
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// QueryConfig contains query configuration.
type QueryConfig struct {
	// DefaultLimit is the default number of records to return if not specified.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the maximum number of records that can be returned in a single query.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables automatic redaction of secrets and PII in logged
	// argument previews.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains custom PII redaction patterns.
	// Each pattern has a name, regex, and replacement string.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom PII redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "mercator"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "mpl"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for builtin call duration (seconds).
	// Default: [0.00001, 0.0001, 0.001, 0.01, 0.1, 1]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "mpl-builtins"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
