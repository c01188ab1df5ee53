package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	assemblyservice "asamblea/contexts/governance/assembly-service"
	ballotservice "asamblea/contexts/governance/ballot-service"
	"asamblea/internal/platform/auth"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/broadcast"
	"asamblea/internal/shared/identity"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "asamblea/internal/platform/httpserver/docs"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	assembly    assemblyservice.Module
	ballots     ballotservice.Module
	tokens      *auth.Tokens
	credentials auth.Credentials
	roles       identity.ElectionRoleStore
	auditLog    audit.Reader
	hub         *broadcast.Hub
}

type Options struct {
	Assembly    assemblyservice.Module
	Ballots     ballotservice.Module
	Tokens      *auth.Tokens
	Credentials auth.Credentials
	Roles       identity.ElectionRoleStore
	AuditLog    audit.Reader
	Hub         *broadcast.Hub
	Logger      *slog.Logger
	Addr        string
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		assembly:    opts.Assembly,
		ballots:     opts.Ballots,
		tokens:      opts.Tokens,
		credentials: opts.Credentials,
		roles:       opts.Roles,
		auditLog:    opts.AuditLog,
		hub:         opts.Hub,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/auth/token", s.handleIssueToken)

	s.mux.HandleFunc("POST /api/elections", s.handleCreateElection)
	s.mux.HandleFunc("GET /api/elections", s.handleListElections)
	s.mux.HandleFunc("GET /api/elections/{election_id}", s.handleGetElection)
	s.mux.HandleFunc("PUT /api/elections/{election_id}/status", s.handleUpdateElectionStatus)
	s.mux.HandleFunc("POST /api/elections/{election_id}/voting/open", s.handleStartVoting)
	s.mux.HandleFunc("POST /api/elections/{election_id}/voting/close", s.handleCloseVoting)

	s.mux.HandleFunc("POST /api/elections/{election_id}/attendance", s.handleMarkAttendance)
	s.mux.HandleFunc("POST /api/elections/{election_id}/attendance/bulk", s.handleBulkMarkAttendance)
	s.mux.HandleFunc("GET /api/elections/{election_id}/attendance/{code}/history", s.handleAttendanceHistory)
	s.mux.HandleFunc("GET /api/elections/{election_id}/summary", s.handleQuorumSummary)

	s.mux.HandleFunc("POST /api/elections/{election_id}/shareholders/import", s.handleImportShareholders)
	s.mux.HandleFunc("GET /api/shareholders", s.handleListShareholders)
	s.mux.HandleFunc("GET /api/shareholders/{code}", s.handleGetShareholder)

	s.mux.HandleFunc("POST /api/persons", s.handleCreatePerson)
	s.mux.HandleFunc("GET /api/persons", s.handleListPersons)

	s.mux.HandleFunc("POST /api/elections/{election_id}/proxies", s.handleCreateProxy)
	s.mux.HandleFunc("GET /api/elections/{election_id}/proxies", s.handleListProxies)
	s.mux.HandleFunc("POST /api/elections/{election_id}/proxies/{proxy_id}/invalidate", s.handleInvalidateProxy)
	s.mux.HandleFunc("POST /api/elections/{election_id}/proxies/{proxy_id}/attendance", s.handleMarkProxyAttendance)

	s.mux.HandleFunc("POST /api/elections/{election_id}/ballots", s.handleCreateBallot)
	s.mux.HandleFunc("GET /api/elections/{election_id}/ballots", s.handleListBallots)
	s.mux.HandleFunc("POST /api/ballots/{ballot_id}/options", s.handleCreateOption)
	s.mux.HandleFunc("POST /api/ballots/{ballot_id}/vote", s.handleCastVote)
	s.mux.HandleFunc("POST /api/ballots/{ballot_id}/vote_all", s.handleVoteAll)
	s.mux.HandleFunc("POST /api/ballots/{ballot_id}/close", s.handleCloseBallot)
	s.mux.HandleFunc("POST /api/ballots/{ballot_id}/reopen", s.handleReopenBallot)
	s.mux.HandleFunc("GET /api/ballots/{ballot_id}/results", s.handleBallotResults)

	s.mux.HandleFunc("POST /api/elections/{election_id}/attendees/import", s.handleImportAttendees)
	s.mux.HandleFunc("GET /api/elections/{election_id}/attendees", s.handleListAttendees)

	s.mux.HandleFunc("POST /api/elections/{election_id}/users", s.handleAssignElectionRole)
	s.mux.HandleFunc("GET /api/elections/{election_id}/users", s.handleListElectionRoles)
	s.mux.HandleFunc("DELETE /api/elections/{election_id}/users/{username}", s.handleRemoveElectionRole)

	s.mux.HandleFunc("GET /api/elections/{election_id}/audit", s.handleListAudit)

	s.mux.HandleFunc("GET /api/elections/{election_id}/observer", s.handleObserverTable)
	s.mux.HandleFunc("GET /api/elections/{election_id}/observer/ws", s.handleObserverSocket)
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !s.decodeJSON(w, r, &req, writePlatformError) {
		return
	}
	principal, err := s.credentials.Authenticate(req.Username, req.Password)
	if err != nil {
		writePlatformError(w, http.StatusUnauthorized, "bad_credentials", "invalid username or password")
		return
	}
	token, err := s.tokens.Issue(principal)
	if err != nil {
		writePlatformError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		Token:    token,
		Username: principal.Username,
		Role:     principal.Role,
	})
}

// requirePrincipal resolves the acting user from the bearer token and
// writes a 401 when none is present or valid.
func (s *Server) requirePrincipal(w http.ResponseWriter, r *http.Request) (identity.Principal, bool) {
	principal, err := s.tokens.FromRequest(r)
	if err != nil {
		code := "invalid_token"
		if errors.Is(err, auth.ErrMissingToken) {
			code = "missing_token"
		}
		writePlatformError(w, http.StatusUnauthorized, code, "a valid bearer token is required")
		return identity.Principal{}, false
	}
	return principal, true
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (identity.Principal, bool) {
	principal, ok := s.requirePrincipal(w, r)
	if !ok {
		return identity.Principal{}, false
	}
	if !principal.IsAdmin() {
		writePlatformError(w, http.StatusForbidden, "forbidden", "administrator role required")
		return identity.Principal{}, false
	}
	return principal, true
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, writeErr func(http.ResponseWriter, int, string, string)) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue(name)), 10, 64)
	if err != nil || id <= 0 {
		writePlatformError(w, http.StatusBadRequest, "invalid_id", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

type platformErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writePlatformError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, platformErrorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
