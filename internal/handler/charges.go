package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// ChargeStore defines the database methods needed by charge setting handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ChargeStore interface {
	GetChargeSetting(ctx context.Context, chargeType string) (database.ChargeSetting, error)
	UpdateChargeSetting(ctx context.Context, arg database.UpdateChargeSettingParams) (database.ChargeSetting, error)
}

// ChargeHandler handles the service and delivery charge settings.
type ChargeHandler struct {
	store ChargeStore
}

// NewChargeHandler creates a new ChargeHandler.
func NewChargeHandler(store ChargeStore) *ChargeHandler {
	return &ChargeHandler{store: store}
}

// RegisterReadRoutes registers the GET endpoints on the given Chi router.
func (h *ChargeHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/admin/service-charge", h.GetServiceCharge)
	r.Get("/admin/delivery-charge", h.GetDeliveryCharge)
}

// RegisterAdminRoutes registers the PUT endpoints on the given Chi router.
func (h *ChargeHandler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/admin/service-charge", h.UpdateServiceCharge)
	r.Put("/admin/delivery-charge", h.UpdateDeliveryCharge)
}

// --- Request / Response types ---

type updateServiceChargeRequest struct {
	Percentage string `json:"percentage"`
	IsActive   bool   `json:"is_active"`
}

type updateDeliveryChargeRequest struct {
	Amount   string `json:"amount"`
	IsActive bool   `json:"is_active"`
}

type serviceChargeResponse struct {
	Percentage string `json:"percentage"`
	IsActive   bool   `json:"is_active"`
}

type deliveryChargeResponse struct {
	Amount   string `json:"amount"`
	IsActive bool   `json:"is_active"`
}

// --- Handlers ---

// GetServiceCharge handles GET /admin/service-charge.
func (h *ChargeHandler) GetServiceCharge(w http.ResponseWriter, r *http.Request) {
	setting, err := h.store.GetChargeSetting(r.Context(), enum.ChargeTypeService)
	if err != nil {
		log.Printf("ERROR: get service charge: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, serviceChargeResponse{
		Percentage: numericToString(setting.Percentage),
		IsActive:   setting.IsActive,
	})
}

// UpdateServiceCharge handles PUT /admin/service-charge.
func (h *ChargeHandler) UpdateServiceCharge(w http.ResponseWriter, r *http.Request) {
	var req updateServiceChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	pct, err := decimal.NewFromString(req.Percentage)
	if err != nil || pct.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "percentage must be a non-negative number"})
		return
	}

	// The update writes both money columns, so carry the current amount.
	current, err := h.store.GetChargeSetting(r.Context(), enum.ChargeTypeService)
	if err != nil {
		log.Printf("ERROR: get service charge: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	setting, err := h.store.UpdateChargeSetting(r.Context(), database.UpdateChargeSettingParams{
		ChargeType: enum.ChargeTypeService,
		Percentage: decimalToNumeric(pct),
		Amount:     current.Amount,
		IsActive:   req.IsActive,
	})
	if err != nil {
		log.Printf("ERROR: update service charge: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, serviceChargeResponse{
		Percentage: numericToString(setting.Percentage),
		IsActive:   setting.IsActive,
	})
}

// GetDeliveryCharge handles GET /admin/delivery-charge.
func (h *ChargeHandler) GetDeliveryCharge(w http.ResponseWriter, r *http.Request) {
	setting, err := h.store.GetChargeSetting(r.Context(), enum.ChargeTypeDelivery)
	if err != nil {
		log.Printf("ERROR: get delivery charge: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, deliveryChargeResponse{
		Amount:   numericToString(setting.Amount),
		IsActive: setting.IsActive,
	})
}

// UpdateDeliveryCharge handles PUT /admin/delivery-charge.
func (h *ChargeHandler) UpdateDeliveryCharge(w http.ResponseWriter, r *http.Request) {
	var req updateDeliveryChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be a non-negative number"})
		return
	}

	current, err := h.store.GetChargeSetting(r.Context(), enum.ChargeTypeDelivery)
	if err != nil {
		log.Printf("ERROR: get delivery charge: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	setting, err := h.store.UpdateChargeSetting(r.Context(), database.UpdateChargeSettingParams{
		ChargeType: enum.ChargeTypeDelivery,
		Percentage: current.Percentage,
		Amount:     decimalToNumeric(amount),
		IsActive:   req.IsActive,
	})
	if err != nil {
		log.Printf("ERROR: update delivery charge: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, deliveryChargeResponse{
		Amount:   numericToString(setting.Amount),
		IsActive: setting.IsActive,
	})
}
