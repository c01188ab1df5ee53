package httpserver

import (
	"errors"
	"net/http"
	"strings"

	assemblyerrors "asamblea/contexts/governance/assembly-service/domain/errors"
	assemblyhttp "asamblea/contexts/governance/assembly-service/transport/http"
	ballothttp "asamblea/contexts/governance/ballot-service/transport/http"
)

func writeAssemblyError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, assemblyhttp.ErrorResponse{Code: code, Message: message})
}

func writeAssemblyDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assemblyerrors.ErrElectionNotFound),
		errors.Is(err, assemblyerrors.ErrShareholderNotFound),
		errors.Is(err, assemblyerrors.ErrProxyNotFound),
		errors.Is(err, assemblyerrors.ErrPersonNotFound):
		writeAssemblyError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, assemblyerrors.ErrQuorumNotMet):
		writeAssemblyError(w, http.StatusConflict, "quorum_not_met", err.Error())
	case errors.Is(err, assemblyerrors.ErrAttendanceUnchanged),
		errors.Is(err, assemblyerrors.ErrShareholderHasProxy),
		errors.Is(err, assemblyerrors.ErrInvalidTransition),
		errors.Is(err, assemblyerrors.ErrElectionClosed),
		errors.Is(err, assemblyerrors.ErrVotingClosed),
		errors.Is(err, assemblyerrors.ErrVotingNotStarted),
		errors.Is(err, assemblyerrors.ErrProxyNotValid),
		errors.Is(err, assemblyerrors.ErrDuplicateProxyNumDoc),
		errors.Is(err, assemblyerrors.ErrDuplicateCode):
		writeAssemblyError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, assemblyerrors.ErrForbidden),
		errors.Is(err, assemblyerrors.ErrRegistrationClosed):
		writeAssemblyError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, assemblyerrors.ErrInvalidAttendanceMode),
		errors.Is(err, assemblyerrors.ErrInvalidCapital),
		errors.Is(err, assemblyerrors.ErrInvalidElectionData),
		errors.Is(err, assemblyerrors.ErrInvalidPersonData),
		errors.Is(err, assemblyerrors.ErrInvalidShareholderRow),
		errors.Is(err, assemblyerrors.ErrInvalidProxyWindow):
		writeAssemblyError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeAssemblyError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	var req assemblyhttp.CreateElectionRequest
	if !s.decodeJSON(w, r, &req, writeAssemblyError) {
		return
	}
	resp, err := s.assembly.Handler.CreateElectionHandler(r.Context(), actor, req)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	// Questions seed the agenda as ballots, in request order.
	for _, question := range req.Questions {
		title := strings.TrimSpace(question)
		if title == "" {
			continue
		}
		if _, err := s.ballots.Handler.CreateBallotHandler(r.Context(), actor, resp.ID, ballothttp.CreateBallotRequest{Title: title}); err != nil {
			writeBallotDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListElections(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	resp, err := s.assembly.Handler.ListElectionsHandler(r.Context())
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	resp, err := s.assembly.Handler.GetElectionHandler(r.Context(), electionID)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateElectionStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	var req assemblyhttp.UpdateElectionStatusRequest
	if !s.decodeJSON(w, r, &req, writeAssemblyError) {
		return
	}
	resp, err := s.assembly.Handler.UpdateElectionStatusHandler(r.Context(), actor, electionID, req)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartVoting(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	resp, err := s.assembly.Handler.StartVotingHandler(r.Context(), actor, electionID)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseVoting(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	resp, err := s.assembly.Handler.CloseVotingHandler(r.Context(), actor, electionID)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	var req assemblyhttp.MarkAttendanceRequest
	if !s.decodeJSON(w, r, &req, writeAssemblyError) {
		return
	}
	resp, err := s.assembly.Handler.MarkAttendanceHandler(
		r.Context(),
		actor,
		electionID,
		req,
		resolveClientIP(r),
		r.UserAgent(),
	)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBulkMarkAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	var req assemblyhttp.BulkMarkAttendanceRequest
	if !s.decodeJSON(w, r, &req, writeAssemblyError) {
		return
	}
	resp, err := s.assembly.Handler.BulkMarkAttendanceHandler(
		r.Context(),
		actor,
		electionID,
		req,
		resolveClientIP(r),
		r.UserAgent(),
	)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAttendanceHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	code := strings.TrimSpace(r.PathValue("code"))
	if code == "" {
		writeAssemblyError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}
	resp, err := s.assembly.Handler.AttendanceHistoryHandler(r.Context(), electionID, code)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuorumSummary(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	resp, err := s.assembly.Handler.QuorumSummaryHandler(r.Context(), electionID)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImportShareholders(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	var req assemblyhttp.ImportShareholdersRequest
	if !s.decodeJSON(w, r, &req, writeAssemblyError) {
		return
	}
	if len(req.Rows) == 0 {
		writeAssemblyError(w, http.StatusBadRequest, "invalid_request", "rows must not be empty")
		return
	}
	resp, err := s.assembly.Handler.ImportShareholdersHandler(r.Context(), actor, electionID, req)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListShareholders(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	resp, err := s.assembly.Handler.ListShareholdersHandler(r.Context())
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetShareholder(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	code := strings.TrimSpace(r.PathValue("code"))
	if code == "" {
		writeAssemblyError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}
	resp, err := s.assembly.Handler.GetShareholderHandler(r.Context(), code)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	var req assemblyhttp.CreatePersonRequest
	if !s.decodeJSON(w, r, &req, writeAssemblyError) {
		return
	}
	resp, err := s.assembly.Handler.CreatePersonHandler(r.Context(), req)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPersons(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	resp, err := s.assembly.Handler.ListPersonsHandler(r.Context())
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateProxy(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	var req assemblyhttp.CreateProxyRequest
	if !s.decodeJSON(w, r, &req, writeAssemblyError) {
		return
	}
	resp, err := s.assembly.Handler.CreateProxyHandler(
		r.Context(),
		actor,
		electionID,
		req,
		resolveClientIP(r),
		r.UserAgent(),
	)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListProxies(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	resp, err := s.assembly.Handler.ListProxiesHandler(r.Context(), electionID)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInvalidateProxy(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	proxyID, ok := pathID(w, r, "proxy_id")
	if !ok {
		return
	}
	resp, err := s.assembly.Handler.InvalidateProxyHandler(r.Context(), actor, electionID, proxyID)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkProxyAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	proxyID, ok := pathID(w, r, "proxy_id")
	if !ok {
		return
	}
	var req assemblyhttp.MarkProxyAttendanceRequest
	if !s.decodeJSON(w, r, &req, writeAssemblyError) {
		return
	}
	resp, err := s.assembly.Handler.MarkProxyAttendanceHandler(r.Context(), actor, electionID, proxyID, req)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
