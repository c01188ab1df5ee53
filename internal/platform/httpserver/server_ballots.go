package httpserver

import (
	"errors"
	"net/http"

	balloterrors "asamblea/contexts/governance/ballot-service/domain/errors"
	ballothttp "asamblea/contexts/governance/ballot-service/transport/http"
)

func writeBallotError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ballothttp.ErrorResponse{Code: code, Message: message})
}

func writeBallotDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, balloterrors.ErrBallotNotFound),
		errors.Is(err, balloterrors.ErrOptionNotFound),
		errors.Is(err, balloterrors.ErrAttendeeNotFound),
		errors.Is(err, balloterrors.ErrElectionNotFound):
		writeBallotError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, balloterrors.ErrQuorumNotMet):
		writeBallotError(w, http.StatusConflict, "quorum_not_met", err.Error())
	case errors.Is(err, balloterrors.ErrBallotClosed),
		errors.Is(err, balloterrors.ErrInvalidTransition),
		errors.Is(err, balloterrors.ErrElectionNotOpen),
		errors.Is(err, balloterrors.ErrVotingNotOpen):
		writeBallotError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, balloterrors.ErrForbidden):
		writeBallotError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, balloterrors.ErrOptionMismatch),
		errors.Is(err, balloterrors.ErrAttendeeMismatch),
		errors.Is(err, balloterrors.ErrInvalidBallotData),
		errors.Is(err, balloterrors.ErrInvalidAttendeeRow),
		errors.Is(err, balloterrors.ErrNegativeAcciones):
		writeBallotError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeBallotError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateBallot(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	var req ballothttp.CreateBallotRequest
	if !s.decodeJSON(w, r, &req, writeBallotError) {
		return
	}
	resp, err := s.ballots.Handler.CreateBallotHandler(r.Context(), actor, electionID, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListBallots(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.ListBallotsHandler(r.Context(), electionID)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateOption(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := pathID(w, r, "ballot_id")
	if !ok {
		return
	}
	var req ballothttp.CreateOptionRequest
	if !s.decodeJSON(w, r, &req, writeBallotError) {
		return
	}
	resp, err := s.ballots.Handler.CreateOptionHandler(r.Context(), actor, ballotID, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := pathID(w, r, "ballot_id")
	if !ok {
		return
	}
	var req ballothttp.CastVoteRequest
	if !s.decodeJSON(w, r, &req, writeBallotError) {
		return
	}
	resp, err := s.ballots.Handler.CastVoteHandler(r.Context(), actor, ballotID, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := pathID(w, r, "ballot_id")
	if !ok {
		return
	}
	var req ballothttp.VoteAllRequest
	if !s.decodeJSON(w, r, &req, writeBallotError) {
		return
	}
	resp, err := s.ballots.Handler.VoteAllHandler(r.Context(), actor, ballotID, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseBallot(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := pathID(w, r, "ballot_id")
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.CloseBallotHandler(r.Context(), actor, ballotID)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReopenBallot(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := pathID(w, r, "ballot_id")
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.ReopenBallotHandler(r.Context(), actor, ballotID)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBallotResults(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	ballotID, ok := pathID(w, r, "ballot_id")
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.BallotResultsHandler(r.Context(), ballotID)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImportAttendees(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	var req ballothttp.ImportAttendeesRequest
	if !s.decodeJSON(w, r, &req, writeBallotError) {
		return
	}
	if len(req.Rows) == 0 {
		writeBallotError(w, http.StatusBadRequest, "invalid_request", "rows must not be empty")
		return
	}
	resp, err := s.ballots.Handler.ImportAttendeesHandler(r.Context(), actor, electionID, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAttendees(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.ListAttendeesHandler(r.Context(), electionID)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
