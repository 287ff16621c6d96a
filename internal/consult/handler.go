package consult

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

// ServiceInterface is what the handler needs from the consultation service.
type ServiceInterface interface {
	Open(sessionID, patientID string) (Consultation, error)
	Record(ctx context.Context, sessionID, patientID string) (Consultation, error)
	Process(sessionID, patientID, transcript string) (Consultation, error)
	AddMedication(sessionID, patientID string, m Medication) (Consultation, error)
	RemoveMedication(sessionID, patientID string, index int) (Consultation, error)
	SmartSuggest(sessionID, patientID string) (Consultation, error)
	Report(ctx context.Context, sessionID, patientID string) (filename, body string, err error)
	SharePrescription(sessionID, patientID string) (string, error)
}

var _ ServiceInterface = (*Service)(nil)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type ConsultationResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message,omitempty"`
	Consultation Consultation `json:"consultation"`
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Open(sessionID(r), mux.Vars(r)["id"])
	h.respond(w, c, err, "")
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	if readOnly(w, r) {
		return
	}
	c, err := h.service.Record(r.Context(), sessionID(r), mux.Vars(r)["id"])
	h.respond(w, c, err, c.Summary)
}

func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	if readOnly(w, r) {
		return
	}
	var body struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	c, err := h.service.Process(sessionID(r), mux.Vars(r)["id"], body.Transcript)
	h.respond(w, c, err, c.Summary)
}

func (h *Handler) AddMedication(w http.ResponseWriter, r *http.Request) {
	if readOnly(w, r) {
		return
	}
	var m Medication
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	c, err := h.service.AddMedication(sessionID(r), mux.Vars(r)["id"], m)
	h.respond(w, c, err, "Medication added")
}

func (h *Handler) RemoveMedication(w http.ResponseWriter, r *http.Request) {
	if readOnly(w, r) {
		return
	}
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "Medication index must be a number")
		return
	}
	c, err := h.service.RemoveMedication(sessionID(r), mux.Vars(r)["id"], index)
	h.respond(w, c, err, "Medication removed")
}

func (h *Handler) SmartSuggest(w http.ResponseWriter, r *http.Request) {
	if readOnly(w, r) {
		return
	}
	c, err := h.service.SmartSuggest(sessionID(r), mux.Vars(r)["id"])
	h.respond(w, c, err, "Suggested medications added")
}

// Report serves the consultation report as a text download.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	name, body, err := h.service.Report(r.Context(), sessionID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func (h *Handler) SharePrescription(w http.ResponseWriter, r *http.Request) {
	if readOnly(w, r) {
		return
	}
	link, err := h.service.SharePrescription(sessionID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "link": link})
}

func (h *Handler) CalculateBMI(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WeightKg float64 `json:"weightKg"`
		HeightCm float64 `json:"heightCm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	bmi, err := BMI(body.WeightKg, body.HeightCm)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "bmi": strconv.FormatFloat(bmi, 'f', 1, 64)})
}

func (h *Handler) respond(w http.ResponseWriter, c Consultation, err error, message string) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ConsultationResponse{Success: true, Message: message, Consultation: c})
}

// readOnly rejects writes from interns.
func readOnly(w http.ResponseWriter, r *http.Request) bool {
	if p, ok := auth.FromContext(r.Context()); ok && p.Role == auth.RoleIntern {
		respondError(w, http.StatusForbidden, "read_only", "Interns have read-only access to consultations")
		return true
	}
	return false
}

func sessionID(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p.SessionID
	}
	return ""
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, patient.ErrPatientNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Patient not found")
	case errors.Is(err, ErrIncompleteMedication), errors.Is(err, ErrNoTranscript), errors.Is(err, ErrInvalidMeasurements):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrMedicationIndex):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "cancelled", "Recording was interrupted")
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
