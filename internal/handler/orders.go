package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/resto-pos/api/internal/middleware"
	"github.com/resto-pos/api/internal/service"
	"github.com/resto-pos/api/internal/ws"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListTakeawayOrdersByCashier(ctx context.Context, arg database.ListTakeawayOrdersByCashierParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	GetLatestOrderByPhone(ctx context.Context, phone string) (database.Order, error)
	GetDriver(ctx context.Context, id uuid.UUID) (database.Driver, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateDeliveryStatus(ctx context.Context, arg database.UpdateDeliveryStatusParams) (database.Order, error)
}

// Notifier publishes order events to the kitchen feed.
// Satisfied by *ws.Hub.
type Notifier interface {
	Broadcast(event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc      OrderServicer
	store    OrderStore
	notifier Notifier
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, notifier Notifier) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, notifier: notifier}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Role gates are applied per-route in the router package.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/takeaway", h.ListTakeaway)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/status", h.UpdateStatus)
	r.Put("/{id}/delivery-status", h.UpdateDeliveryStatus)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName    string                   `json:"customer_name"`
	CustomerPhone   string                   `json:"customer_phone"`
	TableNo         string                   `json:"table_no"`
	DeliveryType    string                   `json:"delivery_type"`
	DeliveryNote    string                   `json:"delivery_note"`
	PayCash         string                   `json:"pay_cash"`
	PayCard         string                   `json:"pay_card"`
	PayBankTransfer string                   `json:"pay_bank_transfer"`
	PaymentNotes    string                   `json:"payment_notes"`
	Items           []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuID   string `json:"menu_id"`
	Quantity int32  `json:"quantity"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	InvoiceNo       string              `json:"invoice_no"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	TableNo         string              `json:"table_no"`
	Subtotal        string              `json:"subtotal"`
	ServiceCharge   string              `json:"service_charge"`
	DeliveryType    string              `json:"delivery_type,omitempty"`
	DeliveryCharge  string              `json:"delivery_charge"`
	DeliveryNote    *string             `json:"delivery_note"`
	DeliveryStatus  string              `json:"delivery_status,omitempty"`
	Driver          *driverResponse     `json:"driver,omitempty"`
	TotalPrice      string              `json:"total_price"`
	PayCash         string              `json:"pay_cash"`
	PayCard         string              `json:"pay_card"`
	PayBankTransfer string              `json:"pay_bank_transfer"`
	TotalPaid       string              `json:"total_paid"`
	ChangeDue       string              `json:"change_due"`
	PaymentNotes    *string             `json:"payment_notes"`
	CashierID       uuid.UUID           `json:"cashier_id"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID       uuid.UUID `json:"id"`
	MenuID   uuid.UUID `json:"menu_id"`
	Name     string    `json:"name"`
	Price    string    `json:"price"`
	ImageUrl *string   `json:"image_url"`
	Quantity int32     `json:"quantity"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateDeliveryStatusRequest struct {
	DeliveryStatus string `json:"delivery_status"`
	DriverID       string `json:"driver_id"`
}

type customerResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateOrderItemRequest{
			MenuID:   item.MenuID,
			Quantity: item.Quantity,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CashierID:       claims.UserID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		TableNo:         req.TableNo,
		DeliveryType:    req.DeliveryType,
		DeliveryNote:    req.DeliveryNote,
		PayCash:         req.PayCash,
		PayCard:         req.PayCard,
		PayBankTransfer: req.PayBankTransfer,
		PaymentNotes:    req.PaymentNotes,
		Items:           svcItems,
	})
	if err != nil {
		if isOrderValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.notifier.Broadcast(ws.NewEvent(ws.EventOrderCreated, resp))
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	params := database.ListOrdersParams{StartDate: start, EndDate: end}
	if s := r.URL.Query().Get("status"); s != "" {
		if !isValidOrderStatus(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, nil)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTakeaway handles GET /orders/takeaway. It returns the calling
// cashier's own takeaway orders, with the assigned driver embedded.
func (h *OrderHandler) ListTakeaway(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	params := database.ListTakeawayOrdersByCashierParams{CashierID: claims.UserID}
	if s := r.URL.Query().Get("status"); s != "" {
		if !isValidOrderStatus(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}

	orders, err := h.store.ListTakeawayOrdersByCashier(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list takeaway orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, nil)
		if o.DriverID.Valid {
			driver, err := h.store.GetDriver(r.Context(), uuid.UUID(o.DriverID.Bytes))
			if err == nil {
				d := toDriverResponse(driver)
				resp[i].Driver = &d
			} else if !errors.Is(err, pgx.ErrNoRows) {
				log.Printf("ERROR: get driver: %v", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// UpdateStatus handles PUT /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:     orderID,
		Status: req.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(updated, nil)
	h.notifier.Broadcast(ws.NewEvent(ws.EventOrderStatusUpdated, resp))
	writeJSON(w, http.StatusOK, resp)
}

// UpdateDeliveryStatus handles PUT /orders/{id}/delivery-status. A driver is
// assigned only together with the 'Driver Pending' status; later status
// changes keep whatever driver is already on the order.
func (h *OrderHandler) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateDeliveryStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.DeliveryStatus == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delivery_status is required"})
		return
	}

	driverID := pgtype.UUID{}
	if req.DeliveryStatus == enum.DeliveryStatusDriverPending && req.DriverID != "" {
		did, err := uuid.Parse(req.DriverID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid driver_id"})
			return
		}
		driverID = pgtype.UUID{Bytes: did, Valid: true}
	}

	updated, err := h.store.UpdateDeliveryStatus(r.Context(), database.UpdateDeliveryStatusParams{
		ID:             orderID,
		DeliveryStatus: req.DeliveryStatus,
		DriverID:       driverID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update delivery status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(updated, nil))
}

// LookupCustomer handles GET /customer?phone=. It returns the customer's
// name from their most recent order, or a null body when the phone is new.
func (h *OrderHandler) LookupCustomer(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone is required"})
		return
	}

	order, err := h.store.GetLatestOrderByPhone(r.Context(), phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		log.Printf("ERROR: lookup customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, customerResponse{
		Name:  order.CustomerName,
		Phone: order.CustomerPhone,
	})
}

// --- Helpers ---

// isOrderValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request. Insufficient
// stock is a 400 like the rest: the cart named a quantity the kitchen cannot
// serve, and the error text tells the cashier which line to fix.
func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidMenuID) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrOutOfStock) ||
		errors.Is(err, service.ErrMissingTable) ||
		errors.Is(err, service.ErrMissingPhone) ||
		errors.Is(err, service.ErrCustomerNameRequired) ||
		errors.Is(err, service.ErrInvalidDeliveryType) ||
		errors.Is(err, service.ErrInvalidPayment)
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusProcessing,
		enum.OrderStatusReady, enum.OrderStatusCompleted:
		return true
	}
	return false
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		InvoiceNo:       o.InvoiceNo,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		TableNo:         o.TableNo,
		Subtotal:        numericToString(o.Subtotal),
		ServiceCharge:   numericToString(o.ServiceCharge),
		DeliveryType:    o.DeliveryType,
		DeliveryCharge:  numericToString(o.DeliveryCharge),
		DeliveryStatus:  o.DeliveryStatus,
		TotalPrice:      numericToString(o.TotalPrice),
		PayCash:         numericToString(o.PayCash),
		PayCard:         numericToString(o.PayCard),
		PayBankTransfer: numericToString(o.PayBankTransfer),
		TotalPaid:       numericToString(o.TotalPaid),
		ChangeDue:       numericToString(o.ChangeDue),
		CashierID:       o.CashierID,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
	}
	if o.DeliveryNote.Valid {
		resp.DeliveryNote = &o.DeliveryNote.String
	}
	if o.PaymentNotes.Valid {
		resp.PaymentNotes = &o.PaymentNotes.String
	}

	if items != nil {
		resp.Items = make([]orderItemResponse, len(items))
		for i, item := range items {
			resp.Items[i] = toOrderItemResponse(item)
		}
	}
	return resp
}

func toOrderItemResponse(item database.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ID:       item.ID,
		MenuID:   item.MenuID,
		Name:     item.Name,
		Price:    numericToString(item.Price),
		Quantity: item.Quantity,
	}
	if item.ImageUrl.Valid {
		resp.ImageUrl = &item.ImageUrl.String
	}
	return resp
}
