package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

// MaxUploadBytes caps the size of an uploaded report.
const MaxUploadBytes = 10 << 20

// ResultStore keeps the latest analysis per session so the assistant can
// answer questions about it.
type ResultStore interface {
	SetAnalysis(sessionID string, r Result)
	Analysis(sessionID string) (Result, bool)
}

// PatientAdder receives imported patients.
type PatientAdder interface {
	Add(ctx context.Context, p patient.Patient) (patient.Patient, error)
}

type Handler struct {
	analyzer *Analyzer
	results  ResultStore
	patients PatientAdder
	rng      Rand
	now      func() time.Time
}

func NewHandler(analyzer *Analyzer, results ResultStore, patients PatientAdder) *Handler {
	return &Handler{
		analyzer: analyzer,
		results:  results,
		patients: patients,
		rng:      patient.SharedRand{},
		now:      time.Now,
	}
}

type AnalysisResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  Result `json:"result"`
}

type ImportResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Patient *patient.Patient `json:"patient,omitempty"`
}

// Upload analyses a report sent as the multipart field "file".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "A report file is required in field 'file'")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Failed to read upload: "+err.Error())
		return
	}

	res := h.analyzer.Analyze(r.Context(), header.Filename, data)
	if sid := sessionID(r); sid != "" {
		h.results.SetAnalysis(sid, res)
	}
	respondJSON(w, http.StatusOK, AnalysisResponse{Success: true, Message: "Analysis complete", Result: res})
}

// Current returns the last analysis of the caller's session.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	res, ok := h.results.Analysis(sessionID(r))
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "No document has been analysed in this session")
		return
	}
	respondJSON(w, http.StatusOK, AnalysisResponse{Success: true, Message: "Analysis retrieved", Result: res})
}

// Import adds the session's current analysis to the patient queue.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	res, ok := h.results.Analysis(sessionID(r))
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "No document has been analysed in this session")
		return
	}

	created, err := h.patients.Add(r.Context(), ToPatient(res, h.rng, h.now()))
	if err != nil {
		var verr *patient.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, "validation_error", verr.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, ImportResponse{
		Success: true,
		Message: created.Name + " added to the dashboard",
		Patient: &created,
	})
}

func sessionID(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p.SessionID
	}
	return ""
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
