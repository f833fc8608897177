// Package server provides the HTTP API of the job posting analyzer.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-intel/internal/fetch"
	"github.com/jonathan/job-intel/internal/server/ratelimit"
	"github.com/jonathan/job-intel/internal/types"
)

// MaxBodyBytes caps the size of an /analyze request body.
const MaxBodyBytes = 128 << 10

const shutdownTimeout = 30 * time.Second

// Analyzer runs one posting analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req *types.AnalyzeRequest) (*types.AnalyzeResponse, error)
}

// CacheStatser reports fetch cache counters for the health endpoint.
type CacheStatser interface {
	Stats() fetch.CacheStats
}

// Config holds server configuration
type Config struct {
	Port        int
	CORSOrigins []string
	RateLimit   *ratelimit.Config
	Logger      *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	analyzer       Analyzer
	cache          CacheStatser
	rateLimiter    *ratelimit.Limiter
	logger         *zap.Logger
	origins        map[string]bool
	allowAnyOrigin bool
}

// New creates a new server instance. cache may be nil when no fetch cache
// is configured.
func New(cfg Config, analyzer Analyzer, cache CacheStatser) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		analyzer:    analyzer,
		cache:       cache,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		logger:      logger,
	}
	s.origins, s.allowAnyOrigin = originSet(cfg.CORSOrigins)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second, // covers a slow posting fetch
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in middleware: rate limit,
// then logging, then CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
