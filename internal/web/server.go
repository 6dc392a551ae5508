// Package web provides the HTTP server and handlers for the master-data
// administration console.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/partsdesk/partsdesk/internal/config"
	"github.com/partsdesk/partsdesk/internal/core"
	mw "github.com/partsdesk/partsdesk/internal/web/middleware"
)

// Pinger is the slice of the connection pool the health endpoint needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the administration console.
type Server struct {
	cfg     *config.Config
	service *core.Service
	catalog *core.Catalog
	store   *core.Store
	db      Pinger

	templates *templateSet
	mutating  func(http.Handler) http.Handler

	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, service *core.Service, catalog *core.Catalog, store *core.Store, db Pinger) *Server {
	s := &Server{
		cfg:       cfg,
		service:   service,
		catalog:   catalog,
		store:     store,
		db:        db,
		templates: newTemplateSet(),
		router:    chi.NewRouter(),
	}

	s.mutating = passthrough
	if cfg.Rate.Enabled {
		s.mutating = newRateLimiter(cfg.Rate).Handler
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders)

	s.router.Use(mw.Metrics())
}

// setupRoutes configures all HTTP routes. Mutating routes go through the
// per-IP rate limiter when it is enabled.
func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Route("/tables/{table}", func(r chi.Router) {
		r.Get("/", s.handleTableList)
		r.Get("/rows/{id}", s.handleRowDetail)
		r.Get("/register", s.handleRegisterForm)
		r.With(s.mutating).Post("/register", s.handleRegisterSubmit)
		r.With(s.mutating).Post("/import", s.handleImport)
		r.Get("/export", s.handleExport)
	})

	// Failed-row retrieval
	s.router.Get("/failed/{id}", s.handleFailedDownload)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.With(s.mutating).Post("/toggle", s.handleToggle)
	})

	// Operational endpoints
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("http server listening", "addr", addr)
	return s.server.ListenAndServe()
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

// passthrough is the middleware used when rate limiting is disabled.
func passthrough(next http.Handler) http.Handler {
	return next
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// XSS protection (legacy but still useful for older browsers)
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		// Content Security Policy - pages use inline styles and the small
		// inline toggle script
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
