package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Principal holds identity extracted from a validated session token.
type Principal struct {
	UserID    string
	Name      string
	Role      Role
	SessionID string
	Claims    *SessionClaims
}

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

var (
	ErrNoToken        = errors.New("no token provided")
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidIssuer  = errors.New("invalid issuer")
	ErrMissingSub     = errors.New("missing sub claim")
	ErrSessionRevoked = errors.New("session is no longer active")
)

// SessionValidator reports whether a session id is still live. Tokens of
// logged-out sessions are rejected even before they expire.
type SessionValidator interface {
	IsActive(sessionID string) bool
}

// Verifier issues and verifies HS256 session tokens.
type Verifier struct {
	cfg      Config
	sessions SessionValidator
	now      func() time.Time
}

// NewVerifier constructs a verifier. sessions may be nil.
func NewVerifier(cfg Config, sessions SessionValidator) *Verifier {
	return &Verifier{cfg: cfg, sessions: sessions, now: time.Now}
}

// SetSessionValidator attaches the session registry after construction.
func (v *Verifier) SetSessionValidator(s SessionValidator) {
	v.sessions = s
}

// Issue signs a token for user bound to sessionID.
func (v *Verifier) Issue(user User, sessionID string) (string, time.Time, error) {
	now := v.now()
	exp := now.Add(v.cfg.TTL)
	claims := SessionClaims{
		Name:      user.Name,
		Role:      user.Role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.cfg.Issuer,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        sessionID,
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(v.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return tok, exp, nil
}

// ParseAndVerifyToken verifies a bearer token, validates issuer/exp and the
// session it belongs to, and returns the Principal.
func (v *Verifier) ParseAndVerifyToken(tokenString string) (*Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrNoToken
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(v.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != v.cfg.Issuer {
		return nil, ErrInvalidIssuer
	}
	if claims.Subject == "" {
		return nil, ErrMissingSub
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	if v.sessions != nil && !v.sessions.IsActive(claims.SessionID) {
		return nil, ErrSessionRevoked
	}

	return &Principal{
		UserID:    claims.Subject,
		Name:      claims.Name,
		Role:      claims.Role,
		SessionID: claims.SessionID,
		Claims:    claims,
	}, nil
}
