package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/talent-search/internal/config"
)

// EndpointConfig is the limit for one route. Paths ending in "/" match by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // defaults to Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromSettings builds a Config from the loaded application settings.
func FromSettings(s config.RateLimitConfig) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow,
		CleanupInterval: s.CleanupInterval,
		Whitelist:       ipSet(s.Whitelist),
		Blacklist:       ipSet(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route limits. Writes that store and
// embed a resume are the most expensive; searches sit between them and reads.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/apply/", Method: http.MethodPost, Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/candidates", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 10},
		{Path: "/search_candidates", Method: http.MethodGet, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/health", Method: http.MethodGet},
		{Path: "/metrics", Method: http.MethodGet},
	}
}

// MatchEndpoint returns the configuration for path and method, preferring an
// exact path over a prefix. It returns nil when nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	for i := range configs {
		c := &configs[i]
		if c.Path == path && c.Method == method {
			return c
		}
	}
	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}

func ipSet(ips []string) map[string]bool {
	out := make(map[string]bool, len(ips))
	for _, ip := range ips {
		if ip = strings.TrimSpace(ip); ip != "" {
			out[ip] = true
		}
	}
	return out
}
