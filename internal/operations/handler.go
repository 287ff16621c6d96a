package operations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type InventoryResponse struct {
	Success bool             `json:"success"`
	Items   []InventoryItem  `json:"items"`
	Summary InventorySummary `json:"summary"`
}

type BillingResponse struct {
	Success  bool      `json:"success"`
	Invoices []Invoice `json:"invoices"`
	Drafts   []Draft   `json:"drafts"`
}

func (h *Handler) Inventory(w http.ResponseWriter, r *http.Request) {
	items, summary := h.service.Inventory(r.URL.Query().Get("search"))
	respondJSON(w, http.StatusOK, InventoryResponse{Success: true, Items: items, Summary: summary})
}

func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	item, err := h.service.Restock(id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": item.Name + " restocked", "item": item})
}

func (h *Handler) Billing(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, BillingResponse{Success: true, Invoices: h.service.Invoices(), Drafts: h.service.Drafts()})
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var form InvoiceForm
	if !decode(w, r, &form) {
		return
	}
	inv, err := h.service.CreateInvoice(form)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "invoice": inv})
}

func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var form InvoiceForm
	if !decode(w, r, &form) {
		return
	}
	d, err := h.service.SaveDraft(form)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "message": "Draft saved successfully.", "draft": d})
}

func (h *Handler) ResumeDraft(w http.ResponseWriter, r *http.Request) {
	form, err := h.service.ResumeDraft(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "form": form})
}

func (h *Handler) Claims(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "claims": h.service.Claims()})
}

func (h *Handler) AutoVerifyClaims(w http.ResponseWriter, r *http.Request) {
	claims, n := h.service.AutoVerifyClaims()
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "verified": n, "claims": claims})
}

func (h *Handler) Roster(w http.ResponseWriter, r *http.Request) {
	staff, err := h.service.Roster(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "staff": staff})
}

func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "tasks": h.service.Tasks()})
}

func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	task, err := h.service.ToggleTask(id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "task": task})
}

func intVar(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", name+" must be a number")
		return 0, false
	}
	return v, true
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrDraftNotFound), errors.Is(err, ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrAlreadyStocked):
		respondError(w, http.StatusConflict, "already_stocked", err.Error())
	case errors.Is(err, ErrUnknownFilter), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrMissingName),
		errors.Is(err, ErrMissingService), errors.Is(err, ErrInvalidBillDate):
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
