// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/job-intel/internal/critique"
)

// Config holds every tunable setting. Values come from Default, then an
// optional JSON file, then the environment.
type Config struct {
	// Logging
	LogLevel  string `json:"log_level,omitempty"`  // debug, info, warn or error
	LogFormat string `json:"log_format,omitempty"` // json or text

	// HTTP server
	Port        int      `json:"port,omitempty"`
	CORSOrigins []string `json:"cors_origins,omitempty"`

	// Fetching
	FetchTimeoutSeconds    int      `json:"fetch_timeout_s,omitempty"`
	AllowedHosts           []string `json:"allowed_hosts,omitempty"`             // Allowed posting domains (suffix match)
	DenyWhenAllowlistEmpty bool     `json:"deny_when_allowlist_empty,omitempty"` // Empty allowlist rejects every host
	FetchMaxRetries        int      `json:"fetch_max_retries,omitempty"`
	UseBrowser             bool     `json:"use_browser,omitempty"` // Use headless browser for SPA sites

	// Fetch cache
	CacheTTLSeconds int    `json:"cache_ttl_s,omitempty"`
	CacheSize       int    `json:"cache_size,omitempty"`
	CacheStoreURL   string `json:"cache_store_url,omitempty"` // postgres:// or redis:// second-level cache

	// CacheStoreMaxEntries caps the rows kept in a postgres store. Zero keeps
	// every unexpired row.
	CacheStoreMaxEntries int `json:"cache_store_max_entries,omitempty"`

	// Critique thresholds
	EntryLevelMaxYears int `json:"entry_level_max_years,omitempty"`
	MaxRealisticYears  int `json:"max_realistic_years,omitempty"`
	MinPostingLength   int `json:"min_posting_length,omitempty"`

	// Rate limiting
	RateLimitEnabled   bool     `json:"rate_limit_enabled"`
	RateLimitPerMinute int      `json:"rate_limit_per_minute,omitempty"`
	RateLimitWhitelist []string `json:"rate_limit_whitelist,omitempty"` // Client IPs exempt from limits
}

// Default returns the documented defaults.
func Default() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8000,
		CORSOrigins:          []string{"http://127.0.0.1:8000", "http://localhost:8000"},
		FetchTimeoutSeconds:  10,
		AllowedHosts:         []string{},
		CacheTTLSeconds:      3600,
		CacheSize:            1000,
		CacheStoreMaxEntries: 10000,
		EntryLevelMaxYears:   2,
		MaxRealisticYears:    15,
		MinPostingLength:     200,
		RateLimitEnabled:     true,
		RateLimitPerMinute:   60,
	}
}

// LoadConfig loads configuration from a JSON file on top of the defaults.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults, overlaid with the file at path when path is
// not empty, then with the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv() error {
	strs := []struct {
		env string
		dst *string
	}{
		{"LOG_LEVEL", &c.LogLevel},
		{"LOG_FORMAT", &c.LogFormat},
		{"CACHE_STORE_URL", &c.CacheStoreURL},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.env); ok {
			*s.dst = strings.TrimSpace(v)
		}
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"PORT", &c.Port},
		{"INGESTION_TIMEOUT_S", &c.FetchTimeoutSeconds},
		{"FETCH_MAX_RETRIES", &c.FetchMaxRetries},
		{"CACHE_TTL_SECONDS", &c.CacheTTLSeconds},
		{"CACHE_MAX_SIZE", &c.CacheSize},
		{"CACHE_STORE_MAX_ENTRIES", &c.CacheStoreMaxEntries},
		{"ENTRY_LEVEL_MAX_YEARS", &c.EntryLevelMaxYears},
		{"MAX_REALISTIC_YEARS", &c.MaxRealisticYears},
		{"MIN_POSTING_LENGTH", &c.MinPostingLength},
		{"RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute},
	}
	for _, i := range ints {
		v, ok := os.LookupEnv(i.env)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config error: %s must be an integer: %w", i.env, err)
		}
		*i.dst = n
	}

	bools := []struct {
		env string
		dst *bool
	}{
		{"INGESTION_DENY_WHEN_EMPTY", &c.DenyWhenAllowlistEmpty},
		{"FETCH_USE_BROWSER", &c.UseBrowser},
		{"RATE_LIMIT_ENABLED", &c.RateLimitEnabled},
	}
	for _, b := range bools {
		v, ok := os.LookupEnv(b.env)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config error: %s must be a boolean: %w", b.env, err)
		}
		*b.dst = parsed
	}

	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("INGESTION_ALLOWED_NETLOCS"); ok {
		c.AllowedHosts = splitList(v)
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_WHITELIST"); ok {
		c.RateLimitWhitelist = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: 'log_level' must be one of debug, info, warn, error")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("config error: 'log_format' must be json or text")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("config error: 'fetch_timeout_s' must be positive")
	}

	nonNegative := []struct {
		name  string
		value int
	}{
		{"fetch_max_retries", c.FetchMaxRetries},
		{"cache_ttl_s", c.CacheTTLSeconds},
		{"cache_size", c.CacheSize},
		{"cache_store_max_entries", c.CacheStoreMaxEntries},
		{"entry_level_max_years", c.EntryLevelMaxYears},
		{"max_realistic_years", c.MaxRealisticYears},
		{"min_posting_length", c.MinPostingLength},
		{"rate_limit_per_minute", c.RateLimitPerMinute},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", f.name)
		}
	}

	if c.CacheStoreURL != "" {
		u, err := url.Parse(c.CacheStoreURL)
		if err != nil {
			return fmt.Errorf("config error: invalid 'cache_store_url': %w", err)
		}
		switch u.Scheme {
		case "postgres", "postgresql", "redis", "rediss":
		default:
			return fmt.Errorf("config error: 'cache_store_url' scheme must be postgres, postgresql, redis or rediss")
		}
	}
	return nil
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// CacheTTL returns the fetch cache lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Thresholds returns the critique thresholds.
func (c *Config) Thresholds() critique.Thresholds {
	return critique.Thresholds{
		EntryLevelMaxYears: c.EntryLevelMaxYears,
		MaxRealisticYears:  c.MaxRealisticYears,
		MinLength:          c.MinPostingLength,
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
