package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/job-intel/internal/config"
	"github.com/jonathan/job-intel/internal/fetch"
	"github.com/jonathan/job-intel/internal/logging"
)

// loadRuntime loads configuration and installs the process logger.
func loadRuntime(path string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}

// newFetcher wires the guarded HTTP client behind the configured caches.
func newFetcher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*fetch.CachedFetcher, error) {
	guard := fetch.NewGuard(fetch.GuardConfig{
		AllowedHosts:  cfg.AllowedHosts,
		DenyWhenEmpty: cfg.DenyWhenAllowlistEmpty,
	})

	opts := fetch.DefaultOptions()
	opts.Timeout = cfg.FetchTimeout()
	opts.MaxRetries = cfg.FetchMaxRetries
	opts.UseBrowser = cfg.UseBrowser
	client := fetch.NewClient(guard, opts, logger)

	store, err := fetch.OpenStore(ctx, cfg.CacheStoreURL, fetch.StoreOptions{
		MaxEntries: cfg.CacheStoreMaxEntries,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	return fetch.NewCachedFetcher(client, &fetch.CachedFetcherConfig{
		CacheTTL:  cfg.CacheTTL(),
		CacheSize: cfg.CacheSize,
		Store:     store,
		Guard:     guard,
	}, logger), nil
}
