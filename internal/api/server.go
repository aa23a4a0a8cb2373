// Package api provides the HTTP API server and handlers for the watch
// progress tracker.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/auth"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/ratelimit"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/service"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/sse"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        *store.Store
	watchService *service.WatchService
	tokenService *auth.TokenService
	sseHandler   *sse.Handler
	limiter      *ratelimit.KeyedRateLimiter
	router       *chi.Mux
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, watchService *service.WatchService, tokenService *auth.TokenService, sseHandler *sse.Handler, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		store:        st,
		watchService: watchService,
		tokenService: tokenService,
		sseHandler:   sseHandler,
		limiter:      limiter,
		router:       chi.NewRouter(),
		logger:       logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// Players run in browsers on other origins.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/watch", func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/", s.handleContinueWatching)
			r.Get("/stream", s.handleStream)

			r.Route("/{mediaID}", func(r chi.Router) {
				r.With(s.rateLimitByUser).Post("/events", s.handleWatchEvents)
				r.Get("/", s.handleGetProgress)
				r.Delete("/", s.handleResetProgress)
			})
		})
	})
}
