// Package auth issues and validates the signed tokens that carry a
// request principal between the HTTP edge and the application layer.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"asamblea/internal/shared/identity"
)

var (
	ErrMissingToken   = errors.New("auth: missing token")
	ErrInvalidToken   = errors.New("auth: invalid token")
	ErrBadCredentials = errors.New("auth: bad credentials")
)

// Tokens signs and parses HS256 principal tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token carrying the principal's username and role.
func (t *Tokens) Issue(p identity.Principal) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  p.Username,
		"role": p.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(t.ttl).Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a raw token and recovers the principal it carries.
func (t *Tokens) Parse(raw string) (identity.Principal, error) {
	token, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", tok.Method.Alg())
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return identity.Principal{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Principal{}, ErrInvalidToken
	}
	username, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if username == "" || role == "" {
		return identity.Principal{}, ErrInvalidToken
	}
	return identity.Principal{Username: username, Role: role}, nil
}

// FromRequest extracts the principal from an Authorization bearer header,
// falling back to a token query parameter for websocket handshakes.
func (t *Tokens) FromRequest(r *http.Request) (identity.Principal, error) {
	raw := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		raw = strings.TrimPrefix(header, "Bearer ")
	} else if q := r.URL.Query().Get("token"); q != "" {
		raw = q
	}
	if raw == "" {
		return identity.Principal{}, ErrMissingToken
	}
	return t.Parse(raw)
}

// Credential is a configured login. Passwords are compared in the clear;
// the user registry is seeded at bootstrap, not managed over HTTP.
type Credential struct {
	Password string
	Role     string
}

// Credentials authenticates configured users by username and password.
type Credentials map[string]Credential

func (c Credentials) Authenticate(username, password string) (identity.Principal, error) {
	cred, ok := c[username]
	if !ok || cred.Password == "" || cred.Password != password {
		return identity.Principal{}, ErrBadCredentials
	}
	return identity.Principal{Username: username, Role: cred.Role}, nil
}
