// Package server is the HTTP front of the document store: a small gist-like
// API that the sync client talks to.
package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   storage.Backend
	log     *slog.Logger
	tokens  map[string]string
	limiter *tokenLimiter
	metrics *Metrics
	reg     *prometheus.Registry
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit limits each token to perSecond requests with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond > 0 {
			s.limiter = newTokenLimiter(perSecond, burst)
		}
	}
}

// WithMetrics registers request metrics on reg and serves them at /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.reg = reg
		s.metrics = NewMetrics("liftlog", "docstore", reg)
	}
}

// New creates a new Server with all routes configured. tokens maps bearer
// token to owner login.
func New(store storage.Backend, tokens map[string]string, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		store:  store,
		log:    log,
		tokens: tokens,
		router: chi.NewRouter(),
	}
	for _, o := range opts {
		o(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
	}
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	if s.reg != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	}

	// Document API (bearer token required)
	s.router.Group(func(r chi.Router) {
		r.Use(BearerAuth(s.tokens))
		if s.limiter != nil {
			r.Use(RateLimit(s.limiter))
		}
		r.Get("/user", s.handleUser)
		r.Get("/documents", s.handleListDocuments)
		r.Post("/documents", s.handleCreateDocument)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Patch("/documents/{id}", s.handleUpdateDocument)
	})
}
