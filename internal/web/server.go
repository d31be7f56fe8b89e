// Package web provides the JSON API server for researcher registration,
// login, search and administrative exports.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/I2Cprogramacion/SEI-sub000/internal/config"
	"github.com/I2Cprogramacion/SEI-sub000/internal/export"
	"github.com/I2Cprogramacion/SEI-sub000/internal/metrics"
	"github.com/I2Cprogramacion/SEI-sub000/internal/web/middleware"
)

// Server is the HTTP API server.
type Server struct {
	cfg     *config.Config
	source  StoreSource
	metrics *metrics.Collector
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
	exports *export.Limiter
	now     func() time.Time
}

// NewServer builds the router. Every request obtains its store from source.
// A nil collector disables the metrics endpoint and export counters.
func NewServer(cfg *config.Config, source StoreSource, m *metrics.Collector) *Server {
	s := &Server{
		cfg:     cfg,
		source:  source,
		metrics: m,
		router:  chi.NewRouter(),
		exports: export.NewLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWait),
		now:     time.Now,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	s.router.Use(securityHeaders)

	if s.cfg.Server.RateLimit > 0 {
		s.limiter = newRateLimiter(s.cfg.Server.RateLimit, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		// Researchers
		r.Post("/investigadores", s.handleRegisterResearcher)
		r.Get("/investigadores", s.handleListResearchers)
		r.Get("/investigadores/{id}", s.handleGetResearcher)

		// Publications
		r.Post("/publicaciones", s.handleCreatePublication)
		r.Get("/publicaciones", s.handleListPublications)

		r.Post("/auth/login", s.handleLogin)
		r.Get("/search", s.handleSearch)

		// Administration
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(s.cfg.Security))
			r.Post("/init", s.handleInitSchema)
			r.Post("/migrate", s.handleMigrate)
			r.Get("/export", s.handleExport)
			r.Get("/incompletos", s.handleIncomplete)
		})
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.exports.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st, release, err := s.source.Acquire(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	defer release()

	if err := st.Connect(r.Context()); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "backend": st.Kind().String()})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
