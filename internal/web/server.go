// Package web provides the HTTP server and handlers for the translation
// management API.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/localeforge/localeforge/internal/auth"
	"github.com/localeforge/localeforge/internal/config"
	"github.com/localeforge/localeforge/internal/core"
)

// Pinger reports database liveness. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the translation management API.
type Server struct {
	service *core.Service
	jwt     *auth.JWTManager
	db      Pinger
	cfg     config.ServerConfig
	maxBody int64
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance. db may be nil, in which case
// health checks skip the database ping.
func NewServer(service *core.Service, jwt *auth.JWTManager, db Pinger, cfg config.ServerConfig, importCfg config.ImportConfig) *Server {
	s := &Server{
		service: service,
		jwt:     jwt,
		db:      db,
		cfg:     cfg,
		maxBody: importCfg.MaxFileSize,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the configured router, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(60 * time.Second))

	// Security hardening
	s.router.Use(securityHeaders)

	// Rate limiting: 100 requests per minute per IP
	limiter := newRateLimiter(100, time.Minute)
	s.router.Use(limiter.middleware)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.sessionAuth)

		// Workspace selection happens before any i18n route works.
		r.Post("/workspace/set", s.handleWorkspaceSet)

		r.Route("/i18n", func(r chi.Router) {
			r.Use(s.workspaceContext)

			r.Get("/export.csv", s.handleExport)
			r.Get("/messages.json", s.handleMessages)
			r.Post("/locale", s.handleLocale)

			// Writes are reserved for owners and admins.
			r.Group(func(r chi.Router) {
				r.Use(s.requireEditor)
				r.Post("/import", s.handleImport)
				r.Post("/sync-keys", s.handleSyncKeys)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeText(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	writeText(w, http.StatusOK, "ok")
}
