package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-intel/internal/config"
	"github.com/jonathan/job-intel/internal/fetch"
	"github.com/jonathan/job-intel/internal/pipeline"
	"github.com/jonathan/job-intel/internal/server"
	"github.com/jonathan/job-intel/internal/server/ratelimit"
	"github.com/jonathan/job-intel/internal/taxonomy"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing GET /health and POST /analyze.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	srv, fetcher, err := newServer(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("failed to close cache store", zap.Error(err))
		}
	}()

	return srv.Start()
}

// newServer assembles the analyzer, its fetcher and the HTTP server.
func newServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*server.Server, *fetch.CachedFetcher, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fetcher, err := newFetcher(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	analyzer := pipeline.New(taxonomy.Default(), fetcher,
		pipeline.WithThresholds(cfg.Thresholds()),
		pipeline.WithLogger(logger),
	)
	srv := server.New(server.Config{
		Port:        cfg.Port,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   ratelimit.NewConfig(cfg.RateLimitEnabled, cfg.RateLimitPerMinute, cfg.RateLimitWhitelist),
		Logger:      logger,
	}, analyzer, fetcher)
	return srv, fetcher, nil
}
