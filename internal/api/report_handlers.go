package api

import (
	"net/http"

	"github.com/shelfkeep/shelfkeep-server/internal/http/response"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

// handleOverdueReport lists active loans past their due date.
func (s *Server) handleOverdueReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reportService.Overdue(r.Context())
	if err != nil {
		s.logger.Error("failed to build overdue report", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, rows, s.logger)
}

// handleTopBooksReport lists the most-borrowed books. The n query
// parameter sets the size, defaulting to five.
func (s *Server) handleTopBooksReport(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "n", service.DefaultTopBooksLimit)

	books, err := s.reportService.TopBooks(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to build top books report", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}
