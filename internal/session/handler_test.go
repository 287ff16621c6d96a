package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MedFlow-Health/operations-service/internal/auth"
)

func requestAs(method, path, body string, s Session) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	pr := &auth.Principal{UserID: s.User.Email, Name: s.User.Name, Role: s.User.Role, SessionID: s.ID}
	return req.WithContext(auth.ContextWithPrincipal(req.Context(), pr))
}

func TestHandler_Login(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.manager)

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewBufferString(`{"email":"doctor@medflow.ai","password":"doctor123","role":"doctor"}`)))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp LoginResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a token in the response")
	}
	if resp.Session.View != auth.ViewDashboard {
		t.Errorf("Expected dashboard view, got %s", resp.Session.View)
	}
}

func TestHandler_Login_RoleMismatch(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.manager)

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewBufferString(`{"email":"nurse@medflow.ai","password":"nurse123","role":"doctor"}`)))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", rr.Code)
	}
	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	if body["message"] != "Email exists, but role does not match. Try selecting 'nurse'." {
		t.Errorf("Unexpected message: %q", body["message"])
	}
}

func TestHandler_Navigate_Denied(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.manager)
	res := f.login(t, "cleaner@medflow.ai", "cleaner123", auth.RoleCleaner)

	rr := httptest.NewRecorder()
	h.Navigate(rr, requestAs(http.MethodPut, "/api/session/view", `{"view":"billing"}`, res.Session))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d", rr.Code)
	}
}

func TestHandler_Navigate_UnknownView(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.manager)
	res := f.login(t, "doctor@medflow.ai", "doctor123", auth.RoleDoctor)

	rr := httptest.NewRecorder()
	h.Navigate(rr, requestAs(http.MethodPut, "/api/session/view", `{"view":"radiology"}`, res.Session))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
}

func TestHandler_Logout(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.manager)
	res := f.login(t, "doctor@medflow.ai", "doctor123", auth.RoleDoctor)

	rr := httptest.NewRecorder()
	h.Logout(rr, requestAs(http.MethodPost, "/api/auth/logout", "", res.Session))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if f.manager.IsActive(res.Session.ID) {
		t.Error("Expected session to be gone after logout")
	}

	rr = httptest.NewRecorder()
	h.Current(rr, requestAs(http.MethodGet, "/api/session", "", res.Session))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 after logout, got %d", rr.Code)
	}
}

func TestHandler_ToggleBreak_NotDoctor(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.manager)
	res := f.login(t, "intern@medflow.ai", "intern123", auth.RoleIntern)

	rr := httptest.NewRecorder()
	h.ToggleBreak(rr, requestAs(http.MethodPost, "/api/session/break", "", res.Session))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d", rr.Code)
	}
}
