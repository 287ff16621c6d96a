package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

// ServiceInterface defines the order operations used by the handler
type ServiceInterface interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest, doctorName string) (Order, error)
	List(patientID string) []Order
}

var _ ServiceInterface = (*Service)(nil)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type OrderSuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order,omitempty"`
}

type OrderListResponse struct {
	Success bool    `json:"success"`
	Orders  []Order `json:"orders"`
	Total   int     `json:"total"`
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}
	if principal.Role == auth.RoleIntern {
		respondError(w, http.StatusForbidden, "read_only", "Interns have read-only access to orders")
		return
	}

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	o, err := h.service.PlaceOrder(r.Context(), req, principal.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoItems):
			respondError(w, http.StatusBadRequest, "validation_error", "Select at least one lab or imaging item")
		case errors.Is(err, patient.ErrPatientNotFound):
			respondError(w, http.StatusNotFound, "not_found", "Patient not found")
		default:
			respondError(w, http.StatusInternalServerError, "order_failed", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, OrderSuccessResponse{
		Success: true,
		Message: "Order placed successfully",
		Order:   &o,
	})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.service.List(r.URL.Query().Get("patientId"))
	respondJSON(w, http.StatusOK, OrderListResponse{Success: true, Orders: orders, Total: len(orders)})
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "catalog": DefaultCatalog})
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
