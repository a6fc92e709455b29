package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-search/internal/config"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l.now = clock.Now
	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/jobs", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/jobs", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 6*time.Second, info.RetryAfter)
	assert.True(t, info.ResetTime.After(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})

	for i := 0; i < 60; i++ {
		allowed, _ := l.Allow("c", "/jobs", "GET")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("c", "/jobs", "GET")
	require.False(t, allowed)

	clock.Advance(time.Second)
	allowed, _ = l.Allow("c", "/jobs", "GET")
	assert.True(t, allowed, "one token per second refills")
	allowed, _ = l.Allow("c", "/jobs", "GET")
	assert.False(t, allowed)
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.9": true},
	})

	for i := 0; i < 20; i++ {
		allowed, info := l.Allow("10.0.0.1", "/jobs", "GET")
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
	allowed, _ := l.Allow("10.0.0.9", "/jobs", "GET")
	assert.False(t, allowed)

	off, _ := newTestLimiter(t, &Config{Enabled: false})
	for i := 0; i < 20; i++ {
		allowed, _ := off.Allow("10.0.0.9", "/jobs", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})

	// /apply/ is a prefix route: every job shares the burst of 5.
	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("c", fmt.Sprintf("/apply/job%d", i%2), "POST")
		require.True(t, allowed)
		assert.Equal(t, 20, info.Limit)
	}
	allowed, _ := l.Allow("c", "/apply/job9", "POST")
	assert.False(t, allowed)

	allowed, info := l.Allow("c", "/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	for i := 0; i < 50; i++ {
		allowed, info := l.Allow("c", "/health", "GET")
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()
	tests := []struct {
		path, method string
		wantPath     string
	}{
		{"/apply/job1", "POST", "/apply/"},
		{"/candidates", "POST", "/candidates"},
		{"/candidates/abc", "GET", ""},
		{"/search_candidates", "GET", "/search_candidates"},
		{"/apply/job1", "GET", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantPath == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})

	var wg sync.WaitGroup
	var allowed atomic.Int64
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/jobs", "GET"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(100), allowed.Load())
}

func TestLimiter_EvictIdle(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 4; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i), "/jobs", "GET")
	}
	clock.Advance(30 * time.Minute)
	l.Allow("10.0.0.0", "/jobs", "GET")

	assert.Equal(t, 0, l.evictIdle(clock.Now()))
	assert.Equal(t, 3, l.evictIdle(clock.Now().Add(45*time.Minute)))
	assert.Len(t, l.buckets, 1)
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(config.RateLimitConfig{
		Enabled:       true,
		DefaultLimit:  50,
		DefaultWindow: time.Minute,
		Whitelist:     []string{" 127.0.0.1 ", ""},
	})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, map[string]bool{"127.0.0.1": true}, cfg.Whitelist)
	assert.NotEmpty(t, cfg.EndpointConfigs)

	assert.False(t, FromSettings(config.RateLimitConfig{}).Enabled)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(nil)
	assert.NotPanics(t, func() {
		l.Stop()
		l.Stop()
	})
}
