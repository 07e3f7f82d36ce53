package config

import "time"

// Default values for configuration fields.
const (
	// Builtins defaults
	DefaultBuiltinsStrict           = false
	DefaultBuiltinsMaxArgumentBytes = 1048576 // 1MB

	// Serve defaults
	DefaultServeMetricsAddress  = "127.0.0.1:9090"
	DefaultServeWatchConfig     = true
	DefaultServeWatchDebounce   = 100 * time.Millisecond
	DefaultServeShutdownTimeout = 10 * time.Second
	DefaultServeTLSMinVersion   = "1.3"
	DefaultServeTLSReload       = 5 * time.Minute

	// Evidence defaults
	DefaultEvidenceEnabled              = false
	DefaultEvidenceBackend              = "sqlite"
	DefaultEvidenceSQLitePath           = "data/evidence.db"
	DefaultEvidenceSQLiteDriver         = "sqlite"
	DefaultEvidenceSQLiteMaxOpenConns   = 10
	DefaultEvidenceSQLiteMaxIdleConns   = 5
	DefaultEvidenceSQLiteWALMode        = true
	DefaultEvidenceSQLiteBusyTimeout    = 5 * time.Second
	DefaultEvidenceRecorderAsyncBuffer  = 1000
	DefaultEvidenceRecorderWriteTimeout = 5 * time.Second
	DefaultEvidenceRecorderHashArgs     = true
	DefaultEvidenceRecorderMaxFieldLen  = 500
	DefaultEvidenceRetentionDays        = 30
	DefaultEvidenceRetentionSchedule    = "0 3 * * *"
	DefaultEvidenceRetentionMaxRecords  = int64(0)
	DefaultEvidenceQueryDefaultLimit    = 100
	DefaultEvidenceQueryMaxLimit        = 10000

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultLoggingRedactPII    = true
	DefaultMetricsEnabled      = true
	DefaultPrometheusPath      = "/metrics"
	DefaultMetricsNamespace    = "mercator"
	DefaultMetricsSubsystem    = "mpl"
	DefaultTracingEnabled      = false
	DefaultTracingSampler      = "ratio"
	DefaultTracingSamplingRate = 1.0
	DefaultTracingServiceName  = "mpl-builtins"
	DefaultOTLPInsecure        = true
	DefaultOTLPTimeout         = 10 * time.Second
)

// DefaultDurationBuckets are the histogram buckets for builtin call duration.
// Builtins run in microseconds, so the buckets start far below the usual
// HTTP latency buckets.
var DefaultDurationBuckets = []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1}

// DefaultFamilies lists every builtin family.
var DefaultFamilies = []string{"base64", "base64url", "hex", "urlquery", "json", "jsonschema", "yaml"}

// NewDefaultConfig returns a configuration with every field set to its
// default. LoadConfig decodes the file on top of it, so fields whose zero
// value is meaningful (booleans defaulting to true, retention days) can still
// be set to zero explicitly.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Builtins.Strict = DefaultBuiltinsStrict
	cfg.Serve.WatchConfig = DefaultServeWatchConfig
	cfg.Evidence.Enabled = DefaultEvidenceEnabled
	cfg.Evidence.SQLite.WALMode = DefaultEvidenceSQLiteWALMode
	cfg.Evidence.Recorder.HashArguments = DefaultEvidenceRecorderHashArgs
	cfg.Evidence.Retention.Days = DefaultEvidenceRetentionDays
	cfg.Telemetry.Logging.RedactPII = DefaultLoggingRedactPII
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	cfg.Telemetry.Tracing.OTLP.Insecure = DefaultOTLPInsecure
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values. Boolean fields are
// left alone since false is indistinguishable from unset; use
// NewDefaultConfig for those.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Builtins defaults
	if len(cfg.Builtins.Families) == 0 {
		cfg.Builtins.Families = append([]string(nil), DefaultFamilies...)
	}
	if cfg.Builtins.MaxArgumentBytes == 0 {
		cfg.Builtins.MaxArgumentBytes = DefaultBuiltinsMaxArgumentBytes
	}

	// Serve defaults
	if cfg.Serve.MetricsAddress == "" {
		cfg.Serve.MetricsAddress = DefaultServeMetricsAddress
	}
	if cfg.Serve.WatchDebounce == 0 {
		cfg.Serve.WatchDebounce = DefaultServeWatchDebounce
	}
	if cfg.Serve.ShutdownTimeout == 0 {
		cfg.Serve.ShutdownTimeout = DefaultServeShutdownTimeout
	}
	if cfg.Serve.TLS.MinVersion == "" {
		cfg.Serve.TLS.MinVersion = DefaultServeTLSMinVersion
	}
	if cfg.Serve.TLS.ReloadInterval == 0 {
		cfg.Serve.TLS.ReloadInterval = DefaultServeTLSReload
	}

	// Evidence defaults
	if cfg.Evidence.Backend == "" {
		cfg.Evidence.Backend = DefaultEvidenceBackend
	}

	// SQLite defaults
	if cfg.Evidence.SQLite.Path == "" {
		cfg.Evidence.SQLite.Path = DefaultEvidenceSQLitePath
	}
	if cfg.Evidence.SQLite.Driver == "" {
		cfg.Evidence.SQLite.Driver = DefaultEvidenceSQLiteDriver
	}
	if cfg.Evidence.SQLite.MaxOpenConns == 0 {
		cfg.Evidence.SQLite.MaxOpenConns = DefaultEvidenceSQLiteMaxOpenConns
	}
	if cfg.Evidence.SQLite.MaxIdleConns == 0 {
		cfg.Evidence.SQLite.MaxIdleConns = DefaultEvidenceSQLiteMaxIdleConns
	}
	if cfg.Evidence.SQLite.BusyTimeout == 0 {
		cfg.Evidence.SQLite.BusyTimeout = DefaultEvidenceSQLiteBusyTimeout
	}

	// Recorder defaults
	if cfg.Evidence.Recorder.AsyncBuffer == 0 {
		cfg.Evidence.Recorder.AsyncBuffer = DefaultEvidenceRecorderAsyncBuffer
	}
	if cfg.Evidence.Recorder.WriteTimeout == 0 {
		cfg.Evidence.Recorder.WriteTimeout = DefaultEvidenceRecorderWriteTimeout
	}
	if cfg.Evidence.Recorder.MaxFieldLength == 0 {
		cfg.Evidence.Recorder.MaxFieldLength = DefaultEvidenceRecorderMaxFieldLen
	}

	// Retention defaults
	if cfg.Evidence.Retention.PruneSchedule == "" {
		cfg.Evidence.Retention.PruneSchedule = DefaultEvidenceRetentionSchedule
	}

	// Query defaults
	if cfg.Evidence.Query.DefaultLimit == 0 {
		cfg.Evidence.Query.DefaultLimit = DefaultEvidenceQueryDefaultLimit
	}
	if cfg.Evidence.Query.MaxLimit == 0 {
		cfg.Evidence.Query.MaxLimit = DefaultEvidenceQueryMaxLimit
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}
