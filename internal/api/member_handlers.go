package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shelfkeep/shelfkeep-server/internal/http/response"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

// handleListMembers returns the member directory with each active loan
// populated with its book title.
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.lendingService.ListMembers(r.Context())
	if err != nil {
		s.logger.Error("failed to list members", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, members, s.logger)
}

// handleAddMember adds a member to the directory.
func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req service.AddMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	member, err := s.lendingService.AddMember(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, member, s.logger)
}

// handleDeleteMember removes a member, provided they hold no loans.
func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")

	if err := s.lendingService.DeleteMember(r.Context(), memberID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessMessage(w, "Member deleted successfully", nil, s.logger)
}
