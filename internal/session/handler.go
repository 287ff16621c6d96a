package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/preferences"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

type SessionResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Session Session `json:"session"`
}

type LoginResponse struct {
	Success bool `json:"success"`
	LoginResult
}

// Login is the only unauthenticated route.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	res, err := h.manager.Login(r.Context(), req)
	if err != nil {
		var mismatch *auth.RoleMismatchError
		switch {
		case errors.As(err, &mismatch), errors.Is(err, auth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{Success: true, LoginResult: res})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Logout(r.Context(), sessionID(r)); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Logged out"})
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(sessionID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{Success: true, Session: s})
}

func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		View auth.View `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	if !body.View.Valid() {
		respondError(w, http.StatusBadRequest, "validation_error", "Unknown view: "+string(body.View))
		return
	}

	s, err := h.manager.Navigate(sessionID(r), body.View)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{Success: true, Session: s})
}

func (h *Handler) Consult(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PatientID string `json:"patientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	s, err := h.manager.ConsultPatient(sessionID(r), body.PatientID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{Success: true, Session: s})
}

func (h *Handler) ToggleBreak(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.ToggleBreak(sessionID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	msg := "You are now Live"
	if s.OnBreak {
		msg = "You are now on break"
	}
	respondJSON(w, http.StatusOK, SessionResponse{Success: true, Message: msg, Session: s})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	s, err := h.manager.UpdateProfile(sessionID(r), body)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{Success: true, Message: "Profile Updated Successfully", Session: s})
}

func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var body SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	s, err := h.manager.SaveSettings(r.Context(), sessionID(r), body)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{Success: true, Message: "Settings Saved Successfully", Session: s})
}

func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.ToggleTheme(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{Success: true, Session: s})
}

func sessionID(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p.SessionID
	}
	return ""
}

func writeError(w http.ResponseWriter, err error) {
	var denied *AccessDeniedError
	switch {
	case errors.As(err, &denied):
		respondError(w, http.StatusForbidden, "access_denied", denied.Error())
	case errors.Is(err, ErrSessionNotFound):
		respondError(w, http.StatusUnauthorized, "unauthenticated", "Session has ended")
	case errors.Is(err, ErrBreakNotAllowed):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ErrUnknownLanguage), errors.Is(err, preferences.ErrUnknownTheme), errors.Is(err, ErrPatientNotChosen):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	respondJSON(w, statusCode, map[string]string{
		"error":   errorType,
		"message": message,
	})
}
