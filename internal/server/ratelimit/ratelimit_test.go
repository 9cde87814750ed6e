package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
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

func analyzeLimiter(perHour, burst int, clock *fakeClock) *Limiter {
	cfg := NewConfig(perHour, burst, "")
	cfg.Clock = clock.Now
	cfg.CleanupInterval = 0
	return NewLimiter(cfg)
}

func TestTokenBucket_Take(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(3, 1.0, now)

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := bucket.take(now)
		assert.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, remaining, reset := bucket.take(now)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(3*time.Second), reset)
}

func TestTokenBucket_Refill(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(2, 1.0, now)
	bucket.take(now)
	bucket.take(now)

	allowed, _, _ := bucket.take(now.Add(500 * time.Millisecond))
	assert.False(t, allowed)

	allowed, _, _ = bucket.take(now.Add(1100 * time.Millisecond))
	assert.True(t, allowed)

	// Never exceeds capacity
	_, remaining, _ := bucket.take(now.Add(time.Hour))
	assert.Equal(t, 1, remaining)
}

func TestLimiter_AnalyzeEndpoints(t *testing.T) {
	clock := newFakeClock()
	limiter := analyzeLimiter(10, 2, clock)
	defer limiter.Stop()

	for i := 0; i < 2; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/analyze", "POST")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
	}

	allowed, info := limiter.Allow("10.0.0.1", "/analyze", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 6*time.Minute, info.RetryAfter)

	// The stream endpoint and other clients have their own buckets
	allowed, _ = limiter.Allow("10.0.0.1", "/analyze/stream", "POST")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("10.0.0.2", "/analyze", "POST")
	assert.True(t, allowed)

	clock.Advance(6 * time.Minute)
	allowed, _ = limiter.Allow("10.0.0.1", "/analyze", "POST")
	assert.True(t, allowed)
}

func TestLimiter_UnlimitedRoutes(t *testing.T) {
	limiter := analyzeLimiter(1, 1, newFakeClock())
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		for _, route := range []struct{ path, method string }{
			{"/health", "GET"},
			{"/metrics", "GET"},
			{"/", "GET"},
			{"/analyze", "GET"},
		} {
			allowed, info := limiter.Allow("10.0.0.1", route.path, route.method)
			assert.True(t, allowed, "%s %s", route.method, route.path)
			assert.Equal(t, 0, info.Limit)
		}
	}
	assert.Equal(t, 0, limiter.Len())
}

func TestLimiter_Exempt(t *testing.T) {
	cfg := NewConfig(1, 1, "127.0.0.1, ::1")
	cfg.CleanupInterval = 0
	limiter := NewLimiter(cfg)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("::1", "/analyze", "POST")
		assert.True(t, allowed)
	}
}

func TestLimiter_Disabled(t *testing.T) {
	for _, limiter := range []*Limiter{NewLimiter(NewConfig(0, 5, "")), NewLimiter(nil)} {
		for i := 0; i < 100; i++ {
			allowed, info := limiter.Allow("10.0.0.1", "/analyze", "POST")
			assert.True(t, allowed)
			assert.Equal(t, 0, info.Limit)
		}
		limiter.Stop()
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := analyzeLimiter(100, 50, newFakeClock())
	defer limiter.Stop()

	var wg sync.WaitGroup
	var allowedCount atomic.Int32

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("10.0.0.1", "/analyze", "POST"); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), allowedCount.Load())
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	clock := newFakeClock()
	limiter := analyzeLimiter(10, 5, clock)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i+1), "/analyze", "POST")
	}
	require.Equal(t, 10, limiter.Len())

	clock.Advance(2 * time.Hour)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i+1), "/analyze", "POST")
	}

	limiter.cleanupBuckets(clock.Now().Add(-time.Hour))
	assert.Equal(t, 5, limiter.Len())
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(NewConfig(10, 1, ""))
	limiter.Stop()
	limiter.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/analyze", Method: "POST", Limit: 5},
		{Path: "/static/", Method: "GET", Limit: 100},
	}

	assert.Equal(t, 5, MatchEndpoint("/analyze", "POST", configs).Limit)
	assert.Equal(t, 100, MatchEndpoint("/static/app.css", "GET", configs).Limit)
	assert.Equal(t, 0, MatchEndpoint("/health", "GET", configs).Limit)
	assert.Nil(t, MatchEndpoint("/analyze", "GET", configs))
	assert.Nil(t, MatchEndpoint("/other", "POST", configs))
}
