package httpserver

import (
	"net/http"
	"strings"

	"asamblea/internal/shared/identity"
)

type assignElectionRoleRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type electionRoleListResponse struct {
	Items []identity.ElectionUserRole `json:"items"`
}

func validElectionRole(role string) bool {
	switch role {
	case identity.ElectionRoleAttendance, identity.ElectionRoleVote, identity.ElectionRoleObserver:
		return true
	default:
		return false
	}
}

func (s *Server) handleAssignElectionRole(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	var req assignElectionRoleRequest
	if !s.decodeJSON(w, r, &req, writePlatformError) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writePlatformError(w, http.StatusBadRequest, "invalid_request", "username is required")
		return
	}
	if !validElectionRole(req.Role) {
		writePlatformError(w, http.StatusBadRequest, "invalid_request", "role must be ATTENDANCE, VOTE or OBSERVER")
		return
	}
	if err := s.roles.AssignElectionRole(r.Context(), electionID, req.Username, req.Role); err != nil {
		writePlatformError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (s *Server) handleListElectionRoles(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	roles, err := s.roles.ListElectionRoles(r.Context(), electionID)
	if err != nil {
		writePlatformError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, electionRoleListResponse{Items: roles})
}

func (s *Server) handleRemoveElectionRole(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		writePlatformError(w, http.StatusBadRequest, "invalid_request", "username is required")
		return
	}
	if err := s.roles.RemoveElectionRole(r.Context(), electionID, username); err != nil {
		writePlatformError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	entries, err := s.auditLog.List(r.Context(), electionID)
	if err != nil {
		writePlatformError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}
