// Package api serves the catalog and order endpoints over HTTP.
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/qapish/qapish/internal/catalog"
)

// Config controls the listener and static file serving. A non-nil TLS
// serves HTTPS on Addr.
type Config struct {
	TLS             *tls.Config
	Addr            string
	StaticDir       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns timeouts suitable for a public listener.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8081",
		StaticDir:       "./web/dist",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the HTTP front of a catalog.Source.
type Server struct {
	source  catalog.Source
	logger  *slog.Logger
	metrics *Metrics
	handler http.Handler
	cfg     Config
}

// NewServer wires routes, middleware and metrics. A nil registry gets a fresh one.
func NewServer(cfg Config, source catalog.Source, logger *slog.Logger, registry *prometheus.Registry) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &Server{
		source:  source,
		logger:  logger,
		metrics: NewMetrics(registry),
		cfg:     cfg,
	}
	s.handler = s.metrics.Middleware(logRequests(logger, cors(s.routes(registry))))
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.TLS != nil {
		ln = tls.NewListener(ln, s.cfg.TLS)
	}

	server := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("API listening", "addr", ln.Addr().String(), "tls", s.cfg.TLS != nil)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down API server")
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
