// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes the engine service over REST and WebSocket.
// Requests run passes through the service, which serializes them per engine.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noldarim/fuzzy/internal/config"
	"github.com/noldarim/fuzzy/internal/logger"
	"github.com/noldarim/fuzzy/internal/metrics"
	"github.com/noldarim/fuzzy/internal/service"
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetAPILogger()
		log = &l
	})
	return log
}

// Server is the REST + WebSocket API server.
type Server struct {
	httpServer *http.Server
	registry   *ClientRegistry
	limiter    *RateLimiter
	cleanup    time.Duration
}

// New creates and wires up the API server. It does NOT start listening;
// call Run() for that. m may be nil when metrics are disabled.
func New(cfg *config.AppConfig, svc *service.EngineService, m *metrics.Metrics) *Server {
	registry := NewClientRegistry()
	handlers := NewHandlers(svc)

	s := &Server{registry: registry, cleanup: cfg.RateLimit.CleanupInterval}
	if cfg.RateLimit.Enabled {
		s.limiter = NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	r := chi.NewRouter()

	// AccessLog sits outside Recovery so a recovered panic is logged as a 500.
	r.Use(RequestID)
	r.Use(AccessLog)
	r.Use(Recovery)
	r.Use(CORS(cfg.Server.AllowedOrigins))
	r.Use(MaxBodySize(cfg.Server.MaxBodyBytes))

	r.Get("/healthz", handlers.Health)
	if m != nil && cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, m.Handler())
	}

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/engines", handlers.ListEngines)
			r.Post("/engines", handlers.CreateEngine)
			r.Post("/reload", handlers.Reload)

			r.Route("/engines/{name}", func(r chi.Router) {
				r.Get("/", handlers.GetEngine)
				r.Delete("/", handlers.DeleteEngine)
				r.Post("/process", handlers.Process)
				r.Post("/batch", handlers.ProcessBatch)
				r.Post("/restart", handlers.Restart)
			})
		})

		r.Get("/ws/engines/{name}", HandleWebSocket(registry, svc, cfg.Server.AllowedOrigins))
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the rate limiter cleanup and the HTTP server.
// Blocks until the server is shut down.
func (s *Server) Run(ctx context.Context) error {
	if s.limiter != nil && s.cleanup > 0 {
		go func() {
			ticker := time.NewTicker(s.cleanup)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := s.limiter.Cleanup(s.cleanup); n > 0 {
						getLog().Debug().Int("removed", n).Msg("Removed idle rate limiters")
					}
				}
			}
		}()
	}

	getLog().Info().Str("addr", s.httpServer.Addr).Msg("API server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server and closes the WebSocket streams,
// which Shutdown does not track.
func (s *Server) Shutdown(ctx context.Context) error {
	s.registry.CloseAll()
	return s.httpServer.Shutdown(ctx)
}
