package auth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// sweepThreshold is the number of tracked keys above which Allow evicts
// elapsed windows
const sweepThreshold = 1024

// FixedWindowLimiter counts requests per key inside fixed windows. A key's
// window starts at its first request and is reset lazily by the first request
// that arrives after the window has elapsed.
type FixedWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      int
	windowSize time.Duration
	now        func() time.Time

	sweepAt   int
	lastSweep time.Time
}

type window struct {
	start time.Time
	count int
}

// NewFixedWindowLimiter creates a new fixed window rate limiter
func NewFixedWindowLimiter(limit int, windowSize time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		windows:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
		sweepAt:    sweepThreshold,
	}
}

// WithClock replaces the limiter's time source
func (l *FixedWindowLimiter) WithClock(now func() time.Time) *FixedWindowLimiter {
	l.now = now
	return l
}

// Allow checks if a request is allowed
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.windows[key]
	if !exists && len(l.windows) >= l.sweepAt {
		l.sweep(now)
	}
	if !exists || now.Sub(w.start) >= l.windowSize {
		w = &window{start: now}
		l.windows[key] = w
	}

	if w.count >= l.limit {
		return false, nil
	}

	w.count++
	return true, nil
}

// sweep drops every elapsed window. It runs at most once per window so a
// large set of live keys does not make each new key pay a full scan.
func (l *FixedWindowLimiter) sweep(now time.Time) {
	if !l.lastSweep.IsZero() && now.Sub(l.lastSweep) < l.windowSize {
		return
	}
	l.lastSweep = now
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.windowSize {
			delete(l.windows, key)
		}
	}
}

// Reset resets the rate limit for a key
func (l *FixedWindowLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, key)
	return nil
}

// Limit returns the per-window request cap
func (l *FixedWindowLimiter) Limit() int {
	return l.limit
}

// WindowSize returns the window length
func (l *FixedWindowLimiter) WindowSize() time.Duration {
	return l.windowSize
}

// IPRateLimiter wraps a rate limiter for IP-based limiting
type IPRateLimiter struct {
	limiter *FixedWindowLimiter
}

// NewIPRateLimiter creates a new IP-based rate limiter
func NewIPRateLimiter(limit int, windowSize time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		limiter: NewFixedWindowLimiter(limit, windowSize),
	}
}

// NewIPRateLimiterFrom wraps an existing fixed window limiter
func NewIPRateLimiterFrom(limiter *FixedWindowLimiter) *IPRateLimiter {
	return &IPRateLimiter{limiter: limiter}
}

// Allow checks if a request from an IP is allowed
func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	return l.limiter.Allow(ctx, fmt.Sprintf("ip:%s", ip))
}

// Limit returns the per-window request cap
func (l *IPRateLimiter) Limit() int {
	return l.limiter.Limit()
}

// WindowSize returns the window length
func (l *IPRateLimiter) WindowSize() time.Duration {
	return l.limiter.WindowSize()
}
