package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type OverviewResponse struct {
	Success bool `json:"success"`
	Overview
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Overview(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, OverviewResponse{Success: true, Overview: o})
}

func (h *Handler) SetNotice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notice string `json:"notice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "notice": h.service.SetNotice(body.Notice)})
}

func (h *Handler) ShareSummary(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.ShareSummaryLink(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "link": link})
}

func (h *Handler) Reminder(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.ReminderLink(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "link": link})
}

func (h *Handler) EmailReminder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	if err := h.service.EmailReminder(r.Context(), mux.Vars(r)["id"], body.Email); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Reminder sent to " + body.Email})
}

func (h *Handler) ToggleSpeech(w http.ResponseWriter, r *http.Request) {
	speaking, err := h.service.ToggleSpeech(r.Context(), sessionID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "speaking": speaking})
}

func (h *Handler) StopSpeech(w http.ResponseWriter, r *http.Request) {
	if err := h.service.StopSpeech(sessionID(r)); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "speaking": false})
}

func sessionID(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p.SessionID
	}
	return ""
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, patient.ErrPatientNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Patient not found")
	case errors.Is(err, ErrUnknownFilter), errors.Is(err, ErrNoRecipient):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrNoFollowUp):
		respondError(w, http.StatusConflict, "no_follow_up", err.Error())
	case errors.Is(err, messaging.ErrEmailDisabled):
		respondError(w, http.StatusNotImplemented, "email_disabled", "Email reminders are not configured")
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
