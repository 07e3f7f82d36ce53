package ratelimit

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket allows bursts up to its capacity while holding an average rate.
// It wraps rate.Limiter with an injectable clock so that every decision is
// taken at an explicit instant.
type TokenBucket struct {
	limiter    atomic.Pointer[rate.Limiter]
	capacity   int64
	refillRate float64 // tokens per second
	now        func() time.Time
}

// NewTokenBucket creates a full bucket.
//
//	// 10 calls/sec average, bursts of 20
//	bucket := NewTokenBucket(20, 10)
func NewTokenBucket(capacity int64, refillRate float64) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

func newTokenBucket(capacity int64, refillRate float64, now func() time.Time) *TokenBucket {
	tb := &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		now:        now,
	}
	tb.Reset()
	return tb
}

// Take consumes n tokens if they are available.
func (tb *TokenBucket) Take(n int64) bool {
	return tb.limiter.Load().AllowN(tb.now(), int(n))
}

// Remaining returns the whole tokens currently available.
func (tb *TokenBucket) Remaining() int64 {
	return int64(tb.tokens())
}

// Capacity returns the burst size.
func (tb *TokenBucket) Capacity() int64 {
	return tb.capacity
}

// TimeUntilAvailable returns how long until n tokens are available, or 0.
func (tb *TokenBucket) TimeUntilAvailable(n int64) time.Duration {
	missing := float64(n) - tb.tokens()
	if missing <= 0 || tb.refillRate <= 0 {
		return 0
	}
	return time.Duration(missing / tb.refillRate * float64(time.Second))
}

// Reset refills the bucket.
func (tb *TokenBucket) Reset() {
	tb.limiter.Store(rate.NewLimiter(rate.Limit(tb.refillRate), int(tb.capacity)))
}

// tokens returns the fractional tokens available now. A bucket that never
// refills spends its burst instead of its tokens, hence the min.
func (tb *TokenBucket) tokens() float64 {
	lim := tb.limiter.Load()
	return min(lim.TokensAt(tb.now()), float64(lim.Burst()))
}
