package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"mercator-hq/mpl-builtins/pkg/mpl/builtins"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "builtins.families").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateBuiltins(&cfg.Builtins)...)
	errs = append(errs, validateServe(&cfg.Serve)...)
	errs = append(errs, validateEvidence(&cfg.Evidence)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// EnabledFamilies returns the configured builtin families. Validate must have
// accepted the configuration; unknown names are skipped.
func (c *BuiltinsConfig) EnabledFamilies() []builtins.Family {
	var out []builtins.Family
	for _, name := range c.Families {
		if f, err := builtins.ParseFamily(name); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// validateBuiltins validates builtin registry configuration.
func validateBuiltins(cfg *BuiltinsConfig) []FieldError {
	var errs []FieldError

	seen := make(map[builtins.Family]bool)
	for i, name := range cfg.Families {
		f, err := builtins.ParseFamily(name)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("builtins.families[%d]", i),
				Message: fmt.Sprintf("unknown family %q: must be one of %s", name, strings.Join(DefaultFamilies, ", ")),
			})
			continue
		}
		if seen[f] {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("builtins.families[%d]", i),
				Message: fmt.Sprintf("family %q listed more than once", name),
			})
		}
		seen[f] = true
	}

	if cfg.MaxArgumentBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "builtins.max_argument_bytes",
			Message: "max argument bytes must be non-negative",
		})
	}

	return errs
}

// validateServe validates serve command configuration.
func validateServe(cfg *ServeConfig) []FieldError {
	var errs []FieldError

	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{
			Field:   "serve.watch_debounce",
			Message: "watch debounce must be non-negative",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "serve.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	errs = append(errs, validateServeTLS(&cfg.TLS)...)

	rl := cfg.RateLimit
	if rl.CallsPerSecond < 0 || rl.CallsPerMinute < 0 || rl.ArgumentBytesPerMinute < 0 || rl.MaxConcurrent < 0 {
		errs = append(errs, FieldError{
			Field:   "serve.rate_limit",
			Message: "rate limits must be non-negative",
		})
	}

	return errs
}

var validClientAuth = map[string]bool{"": true, "request": true, "verify_if_given": true, "require": true}

func validateServeTLS(cfg *TLSConfig) []FieldError {
	var errs []FieldError
	if !cfg.Enabled {
		return errs
	}

	if cfg.CertFile == "" {
		errs = append(errs, FieldError{Field: "serve.tls.cert_file", Message: "required when TLS is enabled"})
	}
	if cfg.KeyFile == "" {
		errs = append(errs, FieldError{Field: "serve.tls.key_file", Message: "required when TLS is enabled"})
	}
	if cfg.MinVersion != "1.2" && cfg.MinVersion != "1.3" {
		errs = append(errs, FieldError{
			Field:   "serve.tls.min_version",
			Message: fmt.Sprintf("invalid TLS version %q (must be 1.2 or 1.3)", cfg.MinVersion),
		})
	}
	if cfg.ReloadInterval < 0 {
		errs = append(errs, FieldError{Field: "serve.tls.cert_reload_interval", Message: "must be non-negative"})
	}
	if !validClientAuth[cfg.ClientAuth] {
		errs = append(errs, FieldError{
			Field:   "serve.tls.client_auth",
			Message: fmt.Sprintf("invalid client auth %q (must be request, verify_if_given or require)", cfg.ClientAuth),
		})
	} else if cfg.ClientAuth != "" && cfg.ClientCAFile == "" {
		errs = append(errs, FieldError{Field: "serve.tls.client_ca_file", Message: "required when client_auth is set"})
	}

	return errs
}

// validateEvidence validates evidence configuration.
func validateEvidence(cfg *EvidenceConfig) []FieldError {
	var errs []FieldError

	// If evidence is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	validBackends := map[string]bool{"memory": true, "sqlite": true}
	if cfg.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "evidence.backend",
			Message: "backend is required when evidence is enabled",
		})
	} else if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "evidence.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "evidence.sqlite.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		validDrivers := map[string]bool{"sqlite": true, "sqlite3": true}
		if !validDrivers[cfg.SQLite.Driver] {
			errs = append(errs, FieldError{
				Field:   "evidence.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.SQLite.Driver),
			})
		}
		if cfg.SQLite.MaxOpenConns < 1 {
			errs = append(errs, FieldError{
				Field:   "evidence.sqlite.max_open_conns",
				Message: "max open connections must be at least 1",
			})
		}
		if cfg.SQLite.MaxIdleConns > cfg.SQLite.MaxOpenConns {
			errs = append(errs, FieldError{
				Field:   "evidence.sqlite.max_idle_conns",
				Message: "max idle connections cannot exceed max open connections",
			})
		}
	}

	if cfg.Recorder.AsyncBuffer < 1 {
		errs = append(errs, FieldError{
			Field:   "evidence.recorder.async_buffer",
			Message: "async buffer must be at least 1",
		})
	}
	if cfg.Recorder.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "evidence.recorder.write_timeout",
			Message: "write timeout must be positive",
		})
	}

	// Validate retention days
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "evidence.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.Days > 3650 { // 10 years is excessive
		errs = append(errs, FieldError{
			Field:   "evidence.retention.days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "evidence.retention.max_records",
			Message: "max records must be non-negative",
		})
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "evidence.retention.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	if cfg.Query.DefaultLimit > cfg.Query.MaxLimit {
		errs = append(errs, FieldError{
			Field:   "evidence.query.default_limit",
			Message: "default limit cannot exceed max limit",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: "pattern is required",
			})
		}
	}

	// Validate metrics prometheus path
	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path is required when metrics are enabled",
		})
	}
	if cfg.Metrics.Path != "" && cfg.Metrics.Path[0] != '/' {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
