package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/MedFlow-Health/operations-service/internal/auth"
)

// TestSecret signs every token issued by CreateTestVerifier.
const TestSecret = "medflow-test-secret"

// SessionSet is an in-memory auth.SessionValidator for tests.
type SessionSet struct {
	mu  sync.RWMutex
	ids map[string]bool
}

func NewSessionSet() *SessionSet {
	return &SessionSet{ids: make(map[string]bool)}
}

func (s *SessionSet) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = true
}

func (s *SessionSet) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *SessionSet) IsActive(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[id]
}

// CreateTestVerifier creates a verifier backed by a SessionSet so tests can
// revoke tokens.
func CreateTestVerifier(t *testing.T) (*auth.Verifier, *SessionSet) {
	t.Helper()

	sessions := NewSessionSet()
	verifier := auth.NewVerifier(auth.NewConfig(TestSecret, time.Hour), sessions)
	return verifier, sessions
}

// IssueTestToken registers a session and returns a signed token for it.
func IssueTestToken(t *testing.T, verifier *auth.Verifier, sessions *SessionSet, email string, role auth.Role) string {
	t.Helper()

	sessionID := "sess-" + string(role) + "-" + email
	sessions.Add(sessionID)

	token, _, err := verifier.Issue(auth.User{Name: email, Email: email, Role: role}, sessionID)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}
