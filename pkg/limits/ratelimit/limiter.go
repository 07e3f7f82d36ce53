package ratelimit

import (
	"time"
)

// Limiter applies every configured call limit. A call is rejected by the
// first limit it exceeds.
type Limiter struct {
	perSecond  *TokenBucket
	perMinute  *TokenBucket
	argBytes   *SlidingWindow
	concurrent *ConcurrentLimiter

	config Config
}

// NewLimiter creates a limiter enforcing the non-zero limits of config.
func NewLimiter(config Config) *Limiter {
	return newLimiter(config, time.Now)
}

func newLimiter(config Config, now func() time.Time) *Limiter {
	l := &Limiter{config: config}

	if config.CallsPerSecond > 0 {
		l.perSecond = newTokenBucket(int64(config.CallsPerSecond*2), float64(config.CallsPerSecond), now)
	}
	if config.CallsPerMinute > 0 {
		l.perMinute = newTokenBucket(int64(config.CallsPerMinute), float64(config.CallsPerMinute)/60.0, now)
	}
	if config.ArgumentBytesPerMinute > 0 {
		l.argBytes = newSlidingWindow(time.Minute, time.Second, now)
	}
	if config.MaxConcurrent > 0 {
		l.concurrent = NewConcurrentLimiter(config.MaxConcurrent)
	}
	return l
}

// Config returns the limits the limiter enforces.
func (l *Limiter) Config() Config {
	return l.config
}

// CheckCall takes one call from the rate limits.
func (l *Limiter) CheckCall() *CheckResult {
	if res := takeCall(l.perSecond, "calls per second limit exceeded"); res != nil {
		return res
	}
	if res := takeCall(l.perMinute, "calls per minute limit exceeded"); res != nil {
		return res
	}
	return allowed
}

func takeCall(bucket *TokenBucket, reason string) *CheckResult {
	if bucket == nil || bucket.Take(1) {
		return nil
	}
	return &CheckResult{
		Reason:     reason,
		Limit:      bucket.Capacity(),
		Remaining:  bucket.Remaining(),
		RetryAfter: bucket.TimeUntilAvailable(1),
	}
}

// ChargeBytes records n request bytes. The call is rejected, and nothing is
// recorded, when the bytes would exceed the per-minute budget.
func (l *Limiter) ChargeBytes(n int) *CheckResult {
	if l.argBytes == nil {
		return allowed
	}

	limit := l.config.ArgumentBytesPerMinute
	used := l.argBytes.Sum()
	if used+int64(n) > limit {
		return &CheckResult{
			Reason:     "argument bytes per minute limit exceeded",
			Limit:      limit,
			Remaining:  max(limit-used, 0),
			RetryAfter: time.Second,
		}
	}
	l.argBytes.Add(int64(n))
	return allowed
}

// AcquireConcurrent takes a concurrency slot. A true result must be paired
// with ReleaseConcurrent.
func (l *Limiter) AcquireConcurrent() bool {
	if l.concurrent == nil {
		return true
	}
	return l.concurrent.Acquire()
}

// ReleaseConcurrent frees a slot taken by AcquireConcurrent.
func (l *Limiter) ReleaseConcurrent() {
	if l.concurrent != nil {
		l.concurrent.Release()
	}
}

// InFlight returns the calls currently holding a concurrency slot.
func (l *Limiter) InFlight() int64 {
	if l.concurrent == nil {
		return 0
	}
	return l.concurrent.Current()
}
