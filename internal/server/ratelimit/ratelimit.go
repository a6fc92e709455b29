// Package ratelimit provides per-client, per-endpoint request limiting.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an unused client bucket is kept.
const idleTTL = time.Hour

// Info describes the limit state after a request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks one token bucket per client and endpoint.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a Limiter. A nil config enables a default of 1000
// requests per minute for every endpoint.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}
	l := &Limiter{
		config:  cfg,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go l.cleanupLoop(cfg.CleanupInterval)
	}
	return l
}

// Allow reports whether a request from clientID to endpoint may proceed.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	ep := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	key := clientID + ":" + method + ":" + endpoint
	if ep == nil {
		ep = &EndpointConfig{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
	} else {
		// Prefix routes share one bucket across their sub-paths.
		key = clientID + ":" + method + ":" + ep.Path
	}
	if ep.Limit <= 0 || ep.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	b := l.bucket(key, ep, now)
	allowed := b.lim.AllowN(now, 1)
	tokens := b.lim.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     ep.Limit,
		Remaining: max(0, int(tokens)),
		ResetTime: now.Add(secondsFor(float64(b.lim.Burst())-tokens, b.lim.Limit())),
	}
	if !allowed {
		info.RetryAfter = secondsFor(1-tokens, b.lim.Limit())
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, ep *EndpointConfig, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		burst := ep.Burst
		if burst <= 0 {
			burst = ep.Limit
		}
		every := rate.Limit(float64(ep.Limit) / ep.Window.Seconds())
		b = &bucket{lim: rate.NewLimiter(every, burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

// secondsFor is the time needed to refill n tokens at r per second.
func secondsFor(n float64, r rate.Limit) time.Duration {
	if n <= 0 || r <= 0 {
		return 0
	}
	return time.Duration(n / float64(r) * float64(time.Second))
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle(l.now())
		case <-l.stop:
			return
		}
	}
}

// evictIdle drops buckets unused since before now minus idleTTL.
func (l *Limiter) evictIdle(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > idleTTL {
			delete(l.buckets, key)
			evicted++
		}
	}
	return evicted
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
