package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"asamblea/internal/shared/identity"
)

func TestIssueParseRoundtrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	principal := identity.Principal{Username: "mesa1", Role: identity.RoleRegistrar}

	raw, err := tokens.Issue(principal)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	parsed, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != principal {
		t.Fatalf("principal did not survive the roundtrip: %+v", parsed)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	raw, err := tokens.Issue(identity.Principal{Username: "admin", Role: identity.RoleAdmin})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := tokens.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage must fail, got %v", err)
	}

	other := NewTokens("another-secret", time.Hour)
	if _, err := other.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret must fail, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := tokens.Issue(identity.Principal{Username: "admin", Role: identity.RoleAdmin})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tokens.now = time.Now
	if _, err := tokens.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token must fail, got %v", err)
	}
}

func TestFromRequest(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	principal := identity.Principal{Username: "mirador", Role: identity.RoleObservador}
	raw, err := tokens.Issue(principal)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	withHeader := httptest.NewRequest("GET", "/api/elections/1/observer", nil)
	withHeader.Header.Set("Authorization", "Bearer "+raw)
	if got, err := tokens.FromRequest(withHeader); err != nil || got != principal {
		t.Fatalf("bearer header failed: %v %+v", err, got)
	}

	// Websocket handshakes cannot set headers, so the query fallback matters.
	withQuery := httptest.NewRequest("GET", "/api/elections/1/observer/ws?token="+raw, nil)
	if got, err := tokens.FromRequest(withQuery); err != nil || got != principal {
		t.Fatalf("query token failed: %v %+v", err, got)
	}

	bare := httptest.NewRequest("GET", "/api/elections/1/observer", nil)
	if _, err := tokens.FromRequest(bare); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("missing token must fail, got %v", err)
	}
}

func TestCredentialsAuthenticate(t *testing.T) {
	creds := Credentials{
		"admin": {Password: "s3cret", Role: identity.RoleAdmin},
		"empty": {Role: identity.RoleObservador},
	}

	principal, err := creds.Authenticate("admin", "s3cret")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if principal.Role != identity.RoleAdmin {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if _, err := creds.Authenticate("admin", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("wrong password must fail, got %v", err)
	}
	if _, err := creds.Authenticate("nobody", "s3cret"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown user must fail, got %v", err)
	}
	// A blank configured password never authenticates.
	if _, err := creds.Authenticate("empty", ""); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("blank password must fail, got %v", err)
	}
}
