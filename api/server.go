package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"skillboard/backend/handlers"
	"skillboard/backend/metrics"
	"skillboard/backend/middleware"
)

// Options configures the cross-cutting behaviour of the API server.
type Options struct {
	AllowedOrigins []string
	Development    bool
	Metrics        *metrics.Metrics // nil disables /metrics
	Logger         *slog.Logger
}

// Server represents the API server
type Server struct {
	router   *mux.Router
	handlers *handlers.Handler
	auth     *middleware.Authenticator
	opts     Options
}

// NewServer creates a new API server
func NewServer(h *handlers.Handler, auth *middleware.Authenticator, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		router:   mux.NewRouter(),
		handlers: h,
		auth:     auth,
		opts:     opts,
	}
	s.RegisterRoutes()
	return s
}

// RegisterRoutes registers all API routes under both / and /api
func (s *Server) RegisterRoutes() {
	s.router.Use(middleware.Instrument(s.opts.Metrics))

	if s.opts.Metrics != nil {
		s.router.Handle("/metrics", s.opts.Metrics.Handler()).Methods("GET")
	}

	// Register routes with both direct paths and /api prefix
	s.handlers.RegisterRoutes(s.router, s.auth.Middleware)
	s.handlers.RegisterRoutes(s.router.PathPrefix("/api").Subrouter(), s.auth.Middleware)
}

// Handler returns the HTTP handler for the API server. CORS and request
// logging wrap the router so preflights and unmatched paths are covered too.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.router
	handler = middleware.CORS(s.opts.AllowedOrigins, s.opts.Development)(handler)
	return middleware.Logging(s.opts.Logger)(handler)
}
