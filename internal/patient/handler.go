package patient

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/pagination"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type PatientSuccessResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Patient *Patient `json:"patient,omitempty"`
}

type PatientListResponse struct {
	Success    bool            `json:"success"`
	Patients   []Patient       `json:"patients"`
	Stats      Stats           `json:"stats"`
	Pagination pagination.Meta `json:"pagination"`
}

type WardListResponse struct {
	Success bool   `json:"success"`
	Wards   []Ward `json:"wards"`
}

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Status:     Status(q.Get("status")),
		Search:     q.Get("search"),
		Department: q.Get("department"),
	}
	if filter.Status != "" && filter.Status != "active" && !filter.Status.Valid() {
		respondError(w, http.StatusBadRequest, "validation_error", "Unknown status filter: "+string(filter.Status))
		return
	}

	page, meta := pagination.Slice(h.service.List(filter), pagination.ParseParams(r))
	respondJSON(w, http.StatusOK, PatientListResponse{
		Success:    true,
		Patients:   page,
		Stats:      h.service.Stats(),
		Pagination: meta,
	})
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, PatientSuccessResponse{Success: true, Message: "Patient retrieved", Patient: &p})
}

func (h *Handler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	p, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, PatientSuccessResponse{
		Success: true,
		Message: "Patient registered successfully",
		Patient: &p,
	})
}

func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.MarkSeen(r.Context(), mux.Vars(r)["id"], actor(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, PatientSuccessResponse{Success: true, Message: p.Name + " marked as seen", Patient: &p})
}

func (h *Handler) Admit(w http.ResponseWriter, r *http.Request) {
	var req AdmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	p, err := h.service.Admit(r.Context(), mux.Vars(r)["id"], req, actor(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, PatientSuccessResponse{Success: true, Message: p.Name + " admitted to " + p.Ward, Patient: &p})
}

func (h *Handler) DischargeDraft(w http.ResponseWriter, r *http.Request) {
	form, err := h.service.DischargeDraft(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "draft": form})
}

func (h *Handler) Discharge(w http.ResponseWriter, r *http.Request) {
	var form DischargeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	p, err := h.service.Discharge(r.Context(), mux.Vars(r)["id"], form, actor(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, PatientSuccessResponse{Success: true, Message: p.Name + " discharged", Patient: &p})
}

// DischargeSummary serves the printable summary as a text download.
func (h *Handler) DischargeSummary(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="Discharge_`+strings.ReplaceAll(p.Name, " ", "_")+`.txt"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(DischargeText(p)))
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	p, err := h.service.AddNote(r.Context(), mux.Vars(r)["id"], body.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, PatientSuccessResponse{Success: true, Message: "Note added", Patient: &p})
}

func (h *Handler) SetSeverity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Severity Severity `json:"severity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	p, err := h.service.SetSeverity(r.Context(), mux.Vars(r)["id"], body.Severity, actor(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, PatientSuccessResponse{Success: true, Message: "Severity updated", Patient: &p})
}

func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Assessment(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "assessment": a})
}

func (h *Handler) ListWards(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, WardListResponse{Success: true, Wards: h.service.Wards()})
}

func actor(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p.UserID
	}
	return "anonymous"
}

func writeServiceError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, "validation_error", verr.Error())
	case errors.Is(err, ErrPatientNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Patient not found")
	case errors.Is(err, ErrNoBedSelected):
		respondError(w, http.StatusBadRequest, "validation_error", "Please select a bed")
	case errors.Is(err, ErrUnknownWard):
		respondError(w, http.StatusBadRequest, "validation_error", "Unknown ward")
	case errors.Is(err, ErrBedUnavailable):
		respondError(w, http.StatusConflict, "bed_unavailable", "Selected bed is not available")
	case errors.Is(err, ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", err.Error())
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
