package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type stubSessions map[string]bool

func (s stubSessions) IsActive(id string) bool { return s[id] }

func testUser() User {
	return User{Name: "Nurse Meera Nair", Email: "nurse@medflow.ai", Role: RoleNurse}
}

func TestIssueAndVerify(t *testing.T) {
	ver := NewVerifier(NewConfig("secret", time.Hour), stubSessions{"sid-1": true})

	tok, exp, err := ver.Issue(testUser(), "sid-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("Expected expiry in the future, got %v", exp)
	}

	pr, err := ver.ParseAndVerifyToken(tok)
	if err != nil {
		t.Fatalf("Expected valid token, got: %v", err)
	}
	if pr.UserID != "nurse@medflow.ai" {
		t.Errorf("Expected UserID 'nurse@medflow.ai', got '%s'", pr.UserID)
	}
	if pr.Role != RoleNurse {
		t.Errorf("Expected role nurse, got %s", pr.Role)
	}
	if pr.SessionID != "sid-1" {
		t.Errorf("Expected session sid-1, got %s", pr.SessionID)
	}
}

func TestVerify_EmptyToken(t *testing.T) {
	ver := NewVerifier(NewConfig("secret", time.Hour), nil)

	if _, err := ver.ParseAndVerifyToken("  "); err != ErrNoToken {
		t.Errorf("Expected ErrNoToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewVerifier(NewConfig("secret-a", time.Hour), nil)
	verifier := NewVerifier(NewConfig("secret-b", time.Hour), nil)

	tok, _, err := issuer.Issue(testUser(), "sid-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := verifier.ParseAndVerifyToken(tok); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	ver := NewVerifier(NewConfig("secret", time.Minute), nil)
	ver.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, _, err := ver.Issue(testUser(), "sid-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := ver.ParseAndVerifyToken(tok); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	cfg := NewConfig("secret", time.Hour)
	claims := SessionClaims{
		Role:      RoleNurse,
		SessionID: "sid-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "nurse@medflow.ai",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	ver := NewVerifier(cfg, nil)
	if _, err := ver.ParseAndVerifyToken(tok); err != ErrInvalidIssuer {
		t.Errorf("Expected ErrInvalidIssuer, got %v", err)
	}
}

func TestVerify_RevokedSession(t *testing.T) {
	sessions := stubSessions{"sid-1": true}
	ver := NewVerifier(NewConfig("secret", time.Hour), sessions)

	tok, _, err := ver.Issue(testUser(), "sid-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	sessions["sid-1"] = false
	if _, err := ver.ParseAndVerifyToken(tok); err != ErrSessionRevoked {
		t.Errorf("Expected ErrSessionRevoked, got %v", err)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	cfg := NewConfig("secret", time.Hour)
	claims := SessionClaims{
		Role: RoleDoctor,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   "doctor@medflow.ai",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	ver := NewVerifier(cfg, nil)
	if _, err := ver.ParseAndVerifyToken(tok); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}
