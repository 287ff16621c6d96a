package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

// PatientGetter loads the patient a clinical question is about.
type PatientGetter interface {
	Get(id string) (patient.Patient, error)
}

type VoiceExecutor interface {
	Execute(ctx context.Context, cmd Command, actor string) Outcome
}

type Handler struct {
	chatbot  *Chatbot
	patients PatientGetter
	voice    VoiceExecutor
}

func NewHandler(chatbot *Chatbot, patients PatientGetter, voice VoiceExecutor) *Handler {
	return &Handler{chatbot: chatbot, patients: patients, voice: voice}
}

type ConversationResponse struct {
	Success      bool         `json:"success"`
	Conversation Conversation `json:"conversation"`
}

type ReplyResponse struct {
	Success     bool    `json:"success"`
	Reply       Message `json:"reply"`
	Context     Context `json:"context"`
	ContextName string  `json:"contextName,omitempty"`
}

func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConversationResponse{Success: true, Conversation: h.chatbot.History(sessionID(r))})
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	sid := sessionID(r)
	reply, err := h.chatbot.Ask(r.Context(), sid, body.Message)
	switch {
	case errors.Is(err, ErrEmptyQuery):
		respondError(w, http.StatusBadRequest, "validation_error", "Message is required")
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "cancelled", "Request cancelled before a reply was ready")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	conv := h.chatbot.History(sid)
	respondJSON(w, http.StatusOK, ReplyResponse{Success: true, Reply: reply, Context: conv.Context, ContextName: conv.ContextName})
}

// ClinicalQuery answers a consultant question about one patient.
func (h *Handler) ClinicalQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	if body.Question == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Question is required")
		return
	}

	p, err := h.patients.Get(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Patient not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	if err := wait(r.Context(), h.chatbot.delay); err != nil {
		respondError(w, http.StatusServiceUnavailable, "cancelled", "Request cancelled before a reply was ready")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"answer":  ClinicalAnswer(p, body.Question),
	})
}

// VoiceCommand parses and runs a spoken transcript.
func (h *Handler) VoiceCommand(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	cmd, ok := ParseCommand(body.Transcript)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "not_recognized", "Command not recognized.")
		return
	}
	out := h.voice.Execute(r.Context(), cmd, actor(r))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Emergency Protocol Identified",
		"outcome": out,
	})
}

func sessionID(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p.SessionID
	}
	return ""
}

func actor(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p.UserID
	}
	return "anonymous"
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
