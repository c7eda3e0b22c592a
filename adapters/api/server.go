// Package api exposes the validation service over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"datavet/app"
	"datavet/domain/core"
	"datavet/internal"
)

// Server hosts the validation endpoints
type Server struct {
	router  *chi.Mux
	service *app.ValidationService
	logger  *internal.Logger
}

// NewServer creates an HTTP server around a validation service
func NewServer(service *app.ValidationService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router returns the underlying handler, for mounting and for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestID)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Post("/v1/validate", s.handleValidate)
	s.router.Post("/v1/infer", s.handleInfer)
	s.router.Post("/v1/update", s.handleUpdate)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	s.logger.Info("starting datavet API server on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// requestID tags every request with an ID for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := core.RequestID(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = core.RequestID(core.NewID())
		}
		w.Header().Set("X-Request-ID", id.String())
		s.logger.Debug("request %s: %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
