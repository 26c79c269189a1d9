package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestFixedWindowLimiter_EleventhRequestRejected(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	limiter := NewFixedWindowLimiter(10, time.Minute).WithClock(clock.Now)

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(ctx, "ip:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
		clock.Advance(time.Second)
	}

	allowed, err := limiter.Allow(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed, "11th request inside the window must be rejected")
}

func TestFixedWindowLimiter_NextWindowResets(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	limiter := NewFixedWindowLimiter(10, time.Minute).WithClock(clock.Now)

	for i := 0; i < 11; i++ {
		limiter.Allow(ctx, "client")
	}

	clock.Advance(time.Minute)

	allowed, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, allowed, "first request in the next window must succeed")
}

func TestFixedWindowLimiter_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter := NewFixedWindowLimiter(1, time.Minute)

	allowed, _ := limiter.Allow(ctx, "a")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "a")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow(ctx, "b")
	assert.True(t, allowed)
}

func TestFixedWindowLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	limiter := NewFixedWindowLimiter(1, time.Minute)

	limiter.Allow(ctx, "a")
	require.NoError(t, limiter.Reset(ctx, "a"))

	allowed, _ := limiter.Allow(ctx, "a")
	assert.True(t, allowed)
}

func TestFixedWindowLimiter_EvictsElapsedWindows(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	limiter := NewFixedWindowLimiter(5, time.Minute).WithClock(clock.Now)
	limiter.sweepAt = 3

	for _, key := range []string{"ip:10.0.0.1", "ip:10.0.0.2", "ip:10.0.0.3"} {
		allowed, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	require.Len(t, limiter.windows, 3)

	clock.Advance(time.Minute)

	allowed, err := limiter.Allow(ctx, "ip:10.0.0.4")
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.Len(t, limiter.windows, 1)
	assert.Contains(t, limiter.windows, "ip:10.0.0.4")
}

func TestFixedWindowLimiter_SweepKeepsLiveWindows(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	limiter := NewFixedWindowLimiter(1, time.Minute).WithClock(clock.Now)
	limiter.sweepAt = 2

	limiter.Allow(ctx, "old")
	clock.Advance(45 * time.Second)
	limiter.Allow(ctx, "live")
	clock.Advance(20 * time.Second)
	limiter.Allow(ctx, "new")

	assert.NotContains(t, limiter.windows, "old")
	assert.Contains(t, limiter.windows, "live")

	// The live key still counts against its window after the sweep.
	allowed, _ := limiter.Allow(ctx, "live")
	assert.False(t, allowed)
}

func TestIPRateLimiter_PrefixesKeys(t *testing.T) {
	ctx := context.Background()
	inner := NewFixedWindowLimiter(1, time.Minute)
	limiter := NewIPRateLimiterFrom(inner)

	allowed, _ := limiter.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed)

	// The raw key is untouched by the IP wrapper.
	allowed, _ = inner.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed)

	allowed, _ = inner.Allow(ctx, "ip:10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, 1, limiter.Limit())
	assert.Equal(t, time.Minute, limiter.WindowSize())
}
