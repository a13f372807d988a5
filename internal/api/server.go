// Package api provides the HTTP API server and handlers for LyricSplit.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lyricsplit/lyricsplit-server/internal/http/response"
	"github.com/lyricsplit/lyricsplit-server/internal/ratelimit"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
	"github.com/lyricsplit/lyricsplit-server/internal/validation"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins lists CORS origins; empty allows any origin.
	AllowedOrigins []string

	// WriteLimiter throttles mutating requests per client IP. Nil disables it.
	WriteLimiter *ratelimit.KeyedRateLimiter

	// RedisPing reports the health of the optional Redis connection.
	RedisPing func(ctx context.Context) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     *store.Store
	services  *Services
	router    *chi.Mux
	api       huma.API
	validator *validation.Validator
	opts      Options
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		store:     store,
		services:  services,
		router:    chi.NewRouter(),
		validator: validation.New(),
		opts:      opts,
		logger:    logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("LyricSplit API", Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

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
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           int((5 * time.Minute).Seconds()),
	}))
	if s.opts.WriteLimiter != nil {
		s.router.Use(WriteRateLimitMiddleware(s.opts.WriteLimiter, s.logger))
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "no route for "+r.URL.Path, s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method+" is not allowed on "+r.URL.Path, s.logger)
	})
}

func (s *Server) allowedOrigins() []string {
	if len(s.opts.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.opts.AllowedOrigins
}

// registerRoutes registers every huma operation.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerSongRoutes()
	s.registerSongEditRoutes()
	s.registerSearchRoutes()
	s.registerDistributionRoutes()
	s.registerFormationRoutes()
}

// validate runs the request validator over a decoded body.
func (s *Server) validate(body any) error {
	return s.validator.Validate(body)
}
