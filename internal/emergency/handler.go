package emergency

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MedFlow-Health/operations-service/internal/auth"
)

type Handler struct {
	board *Board
}

func NewHandler(board *Board) *Handler {
	return &Handler{board: board}
}

type AlertResponse struct {
	Success bool  `json:"success"`
	Alert   Alert `json:"alert"`
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, AlertResponse{Success: true, Alert: h.board.Status()})
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Location string `json:"location"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
			return
		}
	}
	a := h.board.Activate(r.Context(), body.Location, actor(r))
	respondJSON(w, http.StatusOK, AlertResponse{Success: true, Alert: a})
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Resolution string `json:"resolution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	a, err := h.board.Resolve(r.Context(), body.Resolution, actor(r))
	switch {
	case errors.Is(err, ErrUnknownResolution):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	case errors.Is(err, ErrNotActive):
		respondError(w, http.StatusConflict, "not_active", err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, AlertResponse{Success: true, Alert: a})
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
