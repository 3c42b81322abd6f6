// Package web provides the HTTP API of the table sorting service.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/tablesort/internal/config"
	"github.com/JonMunkholm/tablesort/internal/logging"
	"github.com/JonMunkholm/tablesort/internal/sorting"
	"github.com/JonMunkholm/tablesort/internal/store"
	"github.com/JonMunkholm/tablesort/internal/web/middleware"
)

const contentSecurityPolicy = "default-src 'none'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"

// Server is the HTTP server of the sorting API.
type Server struct {
	cfg      *config.Config
	profiles store.Store
	loc      *time.Location
	logger   *slog.Logger
	sorts    *sortLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server over a profile store.
func NewServer(cfg *config.Config, profiles store.Store) (*Server, error) {
	loc, err := cfg.Sorting.Location()
	if err != nil {
		return nil, fmt.Errorf("sort location: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		profiles: profiles,
		loc:      loc,
		logger:   logging.Component("web"),
		sorts:    newSortLimiter(cfg.Sorting.MaxConcurrent, cfg.Sorting.MaxWait),
		router:   chi.NewRouter(),
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() error {
	proxies, err := middleware.ParseProxies(s.cfg.Security.TrustedProxies)
	if err != nil {
		return err
	}

	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(proxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(limiter.Handler)
	}
	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		if s.cfg.Security.RequireAPIKey {
			r.Use(middleware.APIKeyAuth(s.cfg.Security.APIKeys))
		}

		r.Get("/kinds", s.handleKinds)
		r.Get("/defaults", s.handleDefaults)
		r.Post("/classify", s.handleClassify)
		r.Post("/sort", s.handleSort)
		r.Post("/sort/html", s.handleSortHTML)

		r.Get("/profiles", s.handleListProfiles)
		r.Get("/profiles/{name}", s.handleGetProfile)
		r.Put("/profiles/{name}", s.handlePutProfile)
		r.Delete("/profiles/{name}", s.handleDeleteProfile)
	})
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	s.logger.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// newRegistry builds the registry of one request.
func (s *Server) newRegistry() *sorting.Registry {
	return sorting.NewDefaultRegistry(sorting.WithLocation(s.loc))
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}
