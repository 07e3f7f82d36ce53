// Package ratelimit limits builtin calls made over the serve HTTP endpoint.
//
// # Overview
//
// Three primitives are combined by Limiter:
//
//   - TokenBucket: call rate with bursts
//   - SlidingWindow: argument bytes over a rolling minute
//   - ConcurrentLimiter: calls in flight
//
// A handler checks the call rate and takes a concurrency slot before reading
// the request, then charges the body size once it is known:
//
//	limiter := ratelimit.NewLimiter(ratelimit.FromConfig(cfg.Serve.RateLimit))
//	if res := limiter.CheckCall(); !res.Allowed {
//	    // 429, Retry-After: res.RetryAfter
//	}
//	if !limiter.AcquireConcurrent() {
//	    // 429
//	}
//	defer limiter.ReleaseConcurrent()
//	if res := limiter.ChargeBytes(len(body)); !res.Allowed {
//	    // 429
//	}
//
// # Thread Safety
//
// All limiters are safe for concurrent use.
package ratelimit
