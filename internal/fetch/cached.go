package fetch

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PageFetcher fetches a page without caching.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	CacheSize int
	// Store is an optional second level shared between processes.
	Store Store
	// Guard, when set, is checked before any cache lookup so a tightened
	// allowlist also applies to pages cached earlier.
	Guard *Guard
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  time.Hour,
		CacheSize: 1000,
	}
}

// CachedFetcher serves pages from an in-memory LRU, then the optional Store,
// then the network. Only successful fetches are cached.
type CachedFetcher struct {
	fetcher PageFetcher
	l1      *LRU
	l2      Store
	guard   *Guard
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCachedFetcher creates a new cached fetcher.
func NewCachedFetcher(fetcher PageFetcher, config *CachedFetcherConfig, logger *zap.Logger) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = time.Hour
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{
		fetcher: fetcher,
		l1:      NewLRU(config.CacheSize, config.CacheTTL),
		l2:      config.Store,
		guard:   config.Guard,
		ttl:     config.CacheTTL,
		logger:  logger,
	}
}

// Fetch returns a cached copy of urlStr when one is fresh, otherwise fetches
// and caches it. Concurrent misses on one key may both fetch; the second
// insert simply replaces the first.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*Page, error) {
	if f.guard != nil {
		if _, err := f.guard.Check(ctx, urlStr); err != nil {
			return nil, err
		}
	}

	key, ok := CacheKey(urlStr)
	if !ok {
		return f.fetcher.Fetch(ctx, urlStr)
	}

	if page, hit := f.l1.Get(key); hit {
		f.logger.Debug("fetch cache hit", zap.String("tier", "memory"), zap.String("url", truncate(key, 80)))
		page.FromCache = true
		return page, nil
	}

	if f.l2 != nil {
		page, hit, err := f.l2.Get(ctx, key)
		switch {
		case err != nil:
			f.logger.Warn("fetch cache store read failed", zap.Error(err))
		case hit:
			f.logger.Debug("fetch cache hit", zap.String("tier", "store"), zap.String("url", truncate(key, 80)))
			f.l1.Set(key, page)
			page.FromCache = true
			return page, nil
		}
	}

	page, err := f.fetcher.Fetch(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	f.l1.Set(key, page)
	if f.l2 != nil {
		if err := f.l2.Put(ctx, key, page, f.ttl); err != nil {
			f.logger.Warn("fetch cache store write failed", zap.Error(err))
		}
	}
	return page, nil
}

// Stats reports in-memory cache counters.
func (f *CachedFetcher) Stats() CacheStats {
	return f.l1.Stats()
}

// Close releases the store, if any.
func (f *CachedFetcher) Close() error {
	if f.l2 == nil {
		return nil
	}
	return f.l2.Close()
}

// CacheKey normalizes a URL for use as a cache key: scheme and host are
// lower-cased, default ports and fragments dropped. It reports false for
// URLs that cannot be parsed.
func CacheKey(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		host = host + ":" + port
	}

	key := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     u.Path,
		RawPath:  u.RawPath,
		RawQuery: u.RawQuery,
	}
	if key.Path == "" {
		key.Path = "/"
	}
	return key.String(), true
}
