// Package api provides the HTTP API server and handlers for the ShelfKeep application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shelfkeep/shelfkeep-server/internal/http/response"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	lendingService *service.LendingService
	reportService  *service.ReportService
	importService  *service.ImportService
	router         *chi.Mux
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(lendingService *service.LendingService, reportService *service.ReportService, importService *service.ImportService, logger *slog.Logger) *Server {
	s := &Server{
		lendingService: lendingService,
		reportService:  reportService,
		importService:  importService,
		router:         chi.NewRouter(),
		logger:         logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The SPA front end runs on a different origin during development.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.Post("/", s.handleAddBook)
			r.Post("/populate", s.handlePopulate)
			r.Delete("/{id}", s.handleDeleteBook)
			r.Post("/{id}/lend", s.handleLendBook)
			r.Post("/{id}/return", s.handleReturnBook)
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", s.handleListMembers)
			r.Post("/", s.handleAddMember)
			r.Delete("/{id}", s.handleDeleteMember)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/overdue", s.handleOverdueReport)
			r.Get("/top-books", s.handleTopBooksReport)
		})
	})
}

// handleHealthCheck reports server liveness.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, s.logger)
}
