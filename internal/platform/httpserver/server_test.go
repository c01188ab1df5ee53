package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	assemblyservice "asamblea/contexts/governance/assembly-service"
	assemblyapp "asamblea/contexts/governance/assembly-service/application"
	assemblyerrors "asamblea/contexts/governance/assembly-service/domain/errors"
	assemblyhttp "asamblea/contexts/governance/assembly-service/transport/http"
	ballotservice "asamblea/contexts/governance/ballot-service"
	balloterrors "asamblea/contexts/governance/ballot-service/domain/errors"
	ballotports "asamblea/contexts/governance/ballot-service/ports"
	ballothttp "asamblea/contexts/governance/ballot-service/transport/http"
	"asamblea/internal/platform/auth"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/broadcast"
	"asamblea/internal/shared/identity"
)

// electionGate mirrors the composition root's projection bridge for tests.
type electionGate struct {
	elections assemblyapp.ElectionService
}

func (g electionGate) Gate(ctx context.Context, electionID int64) (ballotports.ElectionGateView, error) {
	election, err := g.elections.Get(ctx, electionID)
	if err != nil {
		if errors.Is(err, assemblyerrors.ErrElectionNotFound) {
			return ballotports.ElectionGateView{}, balloterrors.ErrElectionNotFound
		}
		return ballotports.ElectionGateView{}, err
	}
	return ballotports.ElectionGateView{
		Status:     string(election.Status),
		VotingOpen: election.VotingOpen,
		IsDemo:     election.IsDemo,
	}, nil
}

func newTestServer(t *testing.T) (*Server, *auth.Tokens) {
	t.Helper()
	tokens := auth.NewTokens("test-secret", time.Hour)
	assemblyModule := assemblyservice.NewInMemoryModule(identity.RoleAuthorizer{}, broadcast.NopBroadcaster{}, nil)
	ballotModule := ballotservice.NewInMemoryModule(
		electionGate{elections: assemblyModule.Handler.Elections},
		identity.RoleAuthorizer{},
		broadcast.NopBroadcaster{},
		nil,
	)
	server := New(Options{
		Assembly:    assemblyModule,
		Ballots:     ballotModule,
		Tokens:      tokens,
		Credentials: auth.Credentials{"admin": {Password: "admin", Role: identity.RoleAdmin}},
		Roles:       identity.NewMemoryRoleStore(),
		AuditLog:    audit.NewMemoryRecorder(),
		Hub:         broadcast.NewHub(nil),
	})
	return server, tokens
}

func adminRequest(t *testing.T, tokens *auth.Tokens, method, target, body string) *http.Request {
	t.Helper()
	token, err := tokens.Issue(identity.Principal{Username: "admin", Role: identity.RoleAdmin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestCreateElectionWithQuestionsSeedsBallots(t *testing.T) {
	server, tokens := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, adminRequest(t, tokens, "POST", "/api/elections",
		`{"name":"Junta General","date":"2026-03-12T00:00:00Z","questions":["¿Aprueba el balance?","  ","¿Elige al directorio?"]}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create election returned %d: %s", rec.Code, rec.Body.String())
	}
	var election assemblyhttp.ElectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &election); err != nil {
		t.Fatalf("decode election: %v", err)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, adminRequest(t, tokens, "GET",
		"/api/elections/"+strconv.FormatInt(election.ID, 10)+"/ballots", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("list ballots returned %d: %s", rec.Code, rec.Body.String())
	}
	var ballots ballothttp.BallotListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ballots); err != nil {
		t.Fatalf("decode ballots: %v", err)
	}
	if len(ballots.Items) != 2 {
		t.Fatalf("blank questions are skipped, expected 2 ballots, got %d", len(ballots.Items))
	}
	if ballots.Items[0].Title != "¿Aprueba el balance?" || ballots.Items[0].Order != 1 {
		t.Fatalf("unexpected first ballot: %+v", ballots.Items[0])
	}
	if ballots.Items[1].Title != "¿Elige al directorio?" || ballots.Items[1].Order != 2 {
		t.Fatalf("unexpected second ballot: %+v", ballots.Items[1])
	}
}

func TestCreateElectionWithoutQuestions(t *testing.T) {
	server, tokens := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, adminRequest(t, tokens, "POST", "/api/elections",
		`{"name":"Junta General","date":"2026-03-12T00:00:00Z"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create election returned %d: %s", rec.Code, rec.Body.String())
	}
	var election assemblyhttp.ElectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &election); err != nil {
		t.Fatalf("decode election: %v", err)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, adminRequest(t, tokens, "GET",
		"/api/elections/"+strconv.FormatInt(election.ID, 10)+"/ballots", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("list ballots returned %d: %s", rec.Code, rec.Body.String())
	}
	var ballots ballothttp.BallotListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ballots); err != nil {
		t.Fatalf("decode ballots: %v", err)
	}
	if len(ballots.Items) != 0 {
		t.Fatalf("expected an empty agenda, got %d ballots", len(ballots.Items))
	}
}

func TestCreateElectionRequiresToken(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/elections", strings.NewReader(`{"name":"Junta","date":"2026-03-12T00:00:00Z"}`))
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
	var resp platformErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Code != "missing_token" {
		t.Fatalf("unexpected error code %q", resp.Code)
	}
}
