package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shelfkeep/shelfkeep-server/internal/http/response"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

// handleListBooks returns the full catalog.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.lendingService.ListBooks(r.Context())
	if err != nil {
		s.logger.Error("failed to list books", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleAddBook adds a book to the catalog.
func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req service.AddBookRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.lendingService.AddBook(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleDeleteBook removes a book, provided it is not on loan.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	if err := s.lendingService.DeleteBook(r.Context(), bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessMessage(w, "Book deleted successfully", nil, s.logger)
}

// LendRequest identifies the member borrowing a book.
type LendRequest struct {
	MemberID string `json:"memberId"`
}

// handleLendBook lends a book to a member, or waitlists them when the
// book is already out.
func (s *Server) handleLendBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	var req LendRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if req.MemberID == "" {
		response.BadRequest(w, "memberId is required", s.logger)
		return
	}

	result, err := s.lendingService.Lend(r.Context(), bookID, req.MemberID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessMessage(w, result.Message, result, s.logger)
}

// handleReturnBook processes a return, promoting the next waitlisted
// member when there is one.
func (s *Server) handleReturnBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	result, err := s.lendingService.Return(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessMessage(w, result.Message, result, s.logger)
}

// PopulateRequest names the genre to bulk-import.
type PopulateRequest struct {
	Genre string `json:"genre"`
}

// PopulateResult reports how many books an import added.
type PopulateResult struct {
	Added int `json:"added"`
}

// handlePopulate bulk-imports books for a genre from the external
// metadata source.
func (s *Server) handlePopulate(w http.ResponseWriter, r *http.Request) {
	var req PopulateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	added, err := s.importService.Populate(r.Context(), req.Genre)
	if err != nil {
		s.logger.Error("populate failed", "genre", req.Genre, "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessMessage(w, fmt.Sprintf("Successfully added %d books for genre '%s'", added, req.Genre), PopulateResult{Added: added}, s.logger)
}
