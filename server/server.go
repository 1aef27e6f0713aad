// Package server exposes a small HTTP admin surface over a cache registry:
// health, per-cache statistics, clearing, pattern invalidation and
// Prometheus metrics.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/memocache/config"
	"github.com/IvanBrykalov/memocache/registry"
)

// Configs lists resolved cache configs. *config.Resolver implements it.
type Configs interface {
	All() map[string]config.CacheConfig
}

// Server is the admin HTTP server.
type Server struct {
	reg     *registry.Registry
	configs Configs
	gather  prometheus.Gatherer
	log     *slog.Logger
	e       *echo.Echo
}

// Option configures a Server.
type Option func(*Server)

// WithConfigs enables GET /cache/config.
func WithConfigs(c Configs) Option { return func(s *Server) { s.configs = c } }

// WithGatherer sets the source of /metrics (default prometheus.DefaultGatherer).
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Server) { s.gather = g } }

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = l } }

// New builds the server and registers its routes.
func New(reg *registry.Registry, opts ...Option) *Server {
	s := &Server{
		reg:    reg,
		gather: prometheus.DefaultGatherer,
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{})))

	g := e.Group("/cache")
	g.GET("/stats", s.allStats)
	g.GET("/stats/:name", s.stats)
	g.POST("/clear", s.clear)
	g.POST("/invalidate", s.invalidate)
	if s.configs != nil {
		g.GET("/config", s.config)
	}

	s.e = e
	return s
}

// Echo returns the underlying router so callers can mount their own routes.
func (s *Server) Echo() *echo.Echo { return s.e }

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.e }

// Start listens on addr and blocks until the server stops.
// It returns nil after a graceful Shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info("admin server listening", "addr", addr)
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
