package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration on top of the defaults. It does not
// validate.
func Parse(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention MERCATOR_SECTION_FIELD (e.g., MERCATOR_BUILTINS_STRICT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
//
// An empty path skips the file and starts from the defaults.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefaultConfig()
	} else {
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format MERCATOR_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Builtins overrides
	if val := os.Getenv("MERCATOR_BUILTINS_FAMILIES"); val != "" {
		cfg.Builtins.Families = splitList(val)
	}
	if val := os.Getenv("MERCATOR_BUILTINS_STRICT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Builtins.Strict = b
		}
	}
	if val := os.Getenv("MERCATOR_BUILTINS_MAX_ARGUMENT_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Builtins.MaxArgumentBytes = i
		}
	}

	// Serve overrides
	if val := os.Getenv("MERCATOR_SERVE_METRICS_ADDRESS"); val != "" {
		cfg.Serve.MetricsAddress = val
	}
	if val := os.Getenv("MERCATOR_SERVE_WATCH_CONFIG"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Serve.WatchConfig = b
		}
	}
	if val := os.Getenv("MERCATOR_SERVE_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Serve.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("MERCATOR_SERVE_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Serve.TLS.Enabled = b
		}
	}
	if val := os.Getenv("MERCATOR_SERVE_TLS_CERT_FILE"); val != "" {
		cfg.Serve.TLS.CertFile = val
	}
	if val := os.Getenv("MERCATOR_SERVE_TLS_KEY_FILE"); val != "" {
		cfg.Serve.TLS.KeyFile = val
	}
	if val := os.Getenv("MERCATOR_SERVE_RATE_LIMIT_CALLS_PER_SECOND"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Serve.RateLimit.CallsPerSecond = i
		}
	}

	// Evidence overrides
	if val := os.Getenv("MERCATOR_EVIDENCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Evidence.Enabled = b
		}
	}
	if val := os.Getenv("MERCATOR_EVIDENCE_BACKEND"); val != "" {
		cfg.Evidence.Backend = val
	}
	if val := os.Getenv("MERCATOR_EVIDENCE_SQLITE_PATH"); val != "" {
		cfg.Evidence.SQLite.Path = val
	}
	if val := os.Getenv("MERCATOR_EVIDENCE_SQLITE_DRIVER"); val != "" {
		cfg.Evidence.SQLite.Driver = val
	}
	if val := os.Getenv("MERCATOR_EVIDENCE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Evidence.Retention.Days = i
		}
	}
	if val := os.Getenv("MERCATOR_EVIDENCE_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Evidence.Retention.MaxRecords = i
		}
	}
	if val := os.Getenv("MERCATOR_EVIDENCE_RETENTION_PRUNE_SCHEDULE"); val != "" {
		cfg.Evidence.Retention.PruneSchedule = val
	}

	// Telemetry overrides
	if val := os.Getenv("MERCATOR_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("MERCATOR_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("MERCATOR_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("MERCATOR_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("MERCATOR_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("MERCATOR_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("MERCATOR_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// splitList splits a comma separated environment value.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
