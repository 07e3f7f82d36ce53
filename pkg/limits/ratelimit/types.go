package ratelimit

import (
	"time"

	"mercator-hq/mpl-builtins/pkg/config"
)

// Config holds every call limit. Zero values mean no limit.
type Config struct {
	// CallsPerSecond limits the sustained call rate. Bursts of twice the
	// rate are allowed.
	CallsPerSecond int

	// CallsPerMinute limits calls per minute.
	CallsPerMinute int

	// ArgumentBytesPerMinute limits request bytes over a rolling minute.
	ArgumentBytesPerMinute int64

	// MaxConcurrent limits calls in flight.
	MaxConcurrent int
}

// FromConfig converts the serve rate limit section.
func FromConfig(cfg config.RateLimitConfig) Config {
	return Config{
		CallsPerSecond:         cfg.CallsPerSecond,
		CallsPerMinute:         cfg.CallsPerMinute,
		ArgumentBytesPerMinute: cfg.ArgumentBytesPerMinute,
		MaxConcurrent:          cfg.MaxConcurrent,
	}
}

// Enabled reports whether any limit is set.
func (c Config) Enabled() bool {
	return c.CallsPerSecond > 0 || c.CallsPerMinute > 0 || c.ArgumentBytesPerMinute > 0 || c.MaxConcurrent > 0
}

// CheckResult is the outcome of a limit check.
type CheckResult struct {
	// Allowed indicates if the call is permitted.
	Allowed bool

	// Reason names the limit that rejected the call.
	Reason string

	// Limit is the configured value of that limit.
	Limit int64

	// Remaining is what is left of it.
	Remaining int64

	// RetryAfter suggests how long to wait before retrying.
	RetryAfter time.Duration
}

var allowed = &CheckResult{Allowed: true}
