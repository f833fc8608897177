package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTimeout     time.Duration // Buckets unused for this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds the server's configuration. analyzePerMinute bounds
// POST /analyze per client; every other endpoint except /health gets a
// looser default.
func NewConfig(enabled bool, analyzePerMinute int, whitelist []string) *Config {
	if !enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       parseIPList(whitelist),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(analyzePerMinute),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs(analyzePerMinute int) []EndpointConfig {
	if analyzePerMinute <= 0 {
		analyzePerMinute = 60
	}
	return []EndpointConfig{
		// Analysis may fetch a URL, so it gets the strictest limit.
		{Path: "/analyze", Method: "POST", Limit: analyzePerMinute, Window: time.Minute, Burst: max(1, analyzePerMinute/6)},
		// Health checks are unlimited, see MatchEndpoint.
	}
}

// parseIPList turns a list of IP addresses into a set.
func parseIPList(ips []string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
