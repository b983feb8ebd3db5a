package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/resto-pos/api/internal/auth"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/resto-pos/api/internal/handler"
	"github.com/resto-pos/api/internal/middleware"
	"github.com/resto-pos/api/internal/service"
	"github.com/resto-pos/api/internal/ws"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	createFn func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
	return m.createFn(ctx, req)
}

// --- Mock OrderStore ---

type mockOrderHandlerStore struct {
	getOrderFn                    func(ctx context.Context, id uuid.UUID) (database.Order, error)
	listOrdersFn                  func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	listTakeawayOrdersByCashierFn func(ctx context.Context, arg database.ListTakeawayOrdersByCashierParams) ([]database.Order, error)
	listOrderItemsByOrderFn       func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	getLatestOrderByPhoneFn       func(ctx context.Context, phone string) (database.Order, error)
	getDriverFn                   func(ctx context.Context, id uuid.UUID) (database.Driver, error)
	updateOrderStatusFn           func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	updateDeliveryStatusFn        func(ctx context.Context, arg database.UpdateDeliveryStatusParams) (database.Order, error)
}

func (m *mockOrderHandlerStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, id)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderHandlerStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, arg)
	}
	return []database.Order{}, nil
}

func (m *mockOrderHandlerStore) ListTakeawayOrdersByCashier(ctx context.Context, arg database.ListTakeawayOrdersByCashierParams) ([]database.Order, error) {
	if m.listTakeawayOrdersByCashierFn != nil {
		return m.listTakeawayOrdersByCashierFn(ctx, arg)
	}
	return []database.Order{}, nil
}

func (m *mockOrderHandlerStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	if m.listOrderItemsByOrderFn != nil {
		return m.listOrderItemsByOrderFn(ctx, orderID)
	}
	return []database.OrderItem{}, nil
}

func (m *mockOrderHandlerStore) GetLatestOrderByPhone(ctx context.Context, phone string) (database.Order, error) {
	if m.getLatestOrderByPhoneFn != nil {
		return m.getLatestOrderByPhoneFn(ctx, phone)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderHandlerStore) GetDriver(ctx context.Context, id uuid.UUID) (database.Driver, error) {
	if m.getDriverFn != nil {
		return m.getDriverFn(ctx, id)
	}
	return database.Driver{}, pgx.ErrNoRows
}

func (m *mockOrderHandlerStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	if m.updateOrderStatusFn != nil {
		return m.updateOrderStatusFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderHandlerStore) UpdateDeliveryStatus(ctx context.Context, arg database.UpdateDeliveryStatusParams) (database.Order, error) {
	if m.updateDeliveryStatusFn != nil {
		return m.updateDeliveryStatusFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

// --- Mock Notifier ---

type mockNotifier struct {
	events []ws.Event
}

func (m *mockNotifier) Broadcast(event ws.Event) {
	m.events = append(m.events, event)
}

// --- Test helpers ---

func setupOrderRouter(svc *mockOrderService, store *mockOrderHandlerStore, notifier *mockNotifier) *chi.Mux {
	h := handler.NewOrderHandler(svc, store, notifier)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/orders", h.RegisterRoutes)
	r.Get("/customer", h.LookupCustomer)
	return r
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func cashierClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: enum.RoleCashier}
}

func testOrder(cashierID uuid.UUID) database.Order {
	return database.Order{
		ID:              uuid.New(),
		InvoiceNo:       "INV-1756400000000-42",
		CustomerName:    "Budi",
		CustomerPhone:   "0812000111",
		TableNo:         "5",
		Subtotal:        testNumeric("50000.00"),
		ServiceCharge:   testNumeric("5000.00"),
		DeliveryCharge:  testNumeric("0.00"),
		TotalPrice:      testNumeric("55000.00"),
		PayCash:         testNumeric("60000.00"),
		PayCard:         testNumeric("0.00"),
		PayBankTransfer: testNumeric("0.00"),
		TotalPaid:       testNumeric("60000.00"),
		ChangeDue:       testNumeric("5000.00"),
		CashierID:       cashierID,
		Status:          enum.OrderStatusPending,
		CreatedAt:       time.Now(),
	}
}

func testOrderResult(cashierID uuid.UUID) *service.CreateOrderResult {
	order := testOrder(cashierID)
	return &service.CreateOrderResult{
		Order: order,
		Items: []database.OrderItem{
			{
				ID:       uuid.New(),
				OrderID:  order.ID,
				MenuID:   uuid.New(),
				Name:     "Nasi Goreng",
				Price:    testNumeric("25000.00"),
				Quantity: 2,
			},
		},
	}
}

// --- Create tests ---

func TestOrderCreate_HappyPath(t *testing.T) {
	claims := cashierClaims()

	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			if req.CashierID != claims.UserID {
				t.Errorf("cashier_id: got %v, want %v", req.CashierID, claims.UserID)
			}
			if len(req.Items) != 1 {
				t.Errorf("items count: got %d, want 1", len(req.Items))
			}
			return testOrderResult(claims.UserID), nil
		},
	}
	notifier := &mockNotifier{}
	router := setupOrderRouter(svc, &mockOrderHandlerStore{}, notifier)

	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"customer_name":  "Budi",
		"customer_phone": "0812000111",
		"table_no":       "5",
		"pay_cash":       "60000",
		"items": []map[string]interface{}{
			{"menu_id": uuid.NewString(), "quantity": 2},
		},
	}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeJSONMap(t, rr)
	if resp["total_price"] != "55000.00" {
		t.Errorf("total_price: got %v, want 55000.00", resp["total_price"])
	}
	if resp["change_due"] != "5000.00" {
		t.Errorf("change_due: got %v, want 5000.00", resp["change_due"])
	}
	if resp["status"] != enum.OrderStatusPending {
		t.Errorf("status: got %v, want %s", resp["status"], enum.OrderStatusPending)
	}
	items, ok := resp["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("items: got %v, want 1 entry", resp["items"])
	}
	item := items[0].(map[string]interface{})
	if item["price"] != "25000.00" {
		t.Errorf("item price: got %v, want 25000.00", item["price"])
	}

	if len(notifier.events) != 1 {
		t.Fatalf("broadcast count: got %d, want 1", len(notifier.events))
	}
	if notifier.events[0].Type != ws.EventOrderCreated {
		t.Errorf("event type: got %s, want %s", notifier.events[0].Type, ws.EventOrderCreated)
	}
}

func TestOrderCreate_ValidationError(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			return nil, service.ErrEmptyItems
		},
	}
	notifier := &mockNotifier{}
	router := setupOrderRouter(svc, &mockOrderHandlerStore{}, notifier)

	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{}, cashierClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if len(notifier.events) != 0 {
		t.Errorf("broadcast count: got %d, want 0", len(notifier.events))
	}
}

func TestOrderCreate_OutOfStock(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			return nil, fmt.Errorf("only 1 left in stock for Nasi Goreng: %w", service.ErrOutOfStock)
		},
	}
	router := setupOrderRouter(svc, &mockOrderHandlerStore{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_id": uuid.NewString(), "quantity": 100},
		},
	}, cashierClaims())
	// A cart exceeding stock on hand is a caller problem, not a conflict.
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	resp := decodeJSONMap(t, rr)
	errMsg, _ := resp["error"].(string)
	if !strings.Contains(errMsg, "only 1 left in stock for Nasi Goreng") {
		t.Errorf("error: got %q, want item name and remaining stock", errMsg)
	}
}

// --- List tests ---

func TestOrderList_StatusFilter(t *testing.T) {
	claims := cashierClaims()
	store := &mockOrderHandlerStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			if !arg.Status.Valid || arg.Status.String != enum.OrderStatusPending {
				t.Errorf("status filter: got %v, want Pending", arg.Status)
			}
			return []database.Order{testOrder(claims.UserID)}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/orders?status=Pending", nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if orders := decodeJSONList(t, rr); len(orders) != 1 {
		t.Fatalf("order count: got %d, want 1", len(orders))
	}
}

func TestOrderList_InvalidStatus(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderHandlerStore{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/orders?status=Bogus", nil, cashierClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderList_InvalidDate(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderHandlerStore{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/orders?start_date=29-08-2026", nil, cashierClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderList_DateRangeInclusive(t *testing.T) {
	store := &mockOrderHandlerStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			if !arg.StartDate.Valid || !arg.EndDate.Valid {
				t.Error("expected both date bounds to be set")
			}
			if arg.EndDate.Time.Hour() != 23 {
				t.Errorf("end bound hour: got %d, want 23", arg.EndDate.Time.Hour())
			}
			return nil, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/orders?start_date=2026-08-01&end_date=2026-08-31", nil, cashierClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

// --- Takeaway listing tests ---

func TestOrderListTakeaway_ScopedToCashier(t *testing.T) {
	claims := cashierClaims()
	store := &mockOrderHandlerStore{
		listTakeawayOrdersByCashierFn: func(ctx context.Context, arg database.ListTakeawayOrdersByCashierParams) ([]database.Order, error) {
			if arg.CashierID != claims.UserID {
				t.Errorf("cashier_id: got %v, want %v", arg.CashierID, claims.UserID)
			}
			return []database.Order{testOrder(claims.UserID)}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/orders/takeaway", nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestOrderListTakeaway_EmbedsDriver(t *testing.T) {
	claims := cashierClaims()
	driverID := uuid.New()

	order := testOrder(claims.UserID)
	order.TableNo = enum.TableTakeaway
	order.DeliveryType = enum.DeliveryTypeService
	order.DeliveryStatus = enum.DeliveryStatusDriverOnTheWay
	order.DriverID = pgtype.UUID{Bytes: driverID, Valid: true}

	store := &mockOrderHandlerStore{
		listTakeawayOrdersByCashierFn: func(ctx context.Context, arg database.ListTakeawayOrdersByCashierParams) ([]database.Order, error) {
			return []database.Order{order}, nil
		},
		getDriverFn: func(ctx context.Context, id uuid.UUID) (database.Driver, error) {
			if id != driverID {
				t.Errorf("driver id: got %v, want %v", id, driverID)
			}
			return database.Driver{ID: driverID, Name: "Joko", Vehicle: "Motorbike", NumberPlate: "B 1234 XY"}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/orders/takeaway", nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	orders := decodeJSONList(t, rr)
	first := orders[0].(map[string]interface{})
	driver, ok := first["driver"].(map[string]interface{})
	if !ok {
		t.Fatal("driver not embedded in response")
	}
	if driver["name"] != "Joko" {
		t.Errorf("driver name: got %v, want Joko", driver["name"])
	}
}

// --- Get tests ---

func TestOrderGet_WithItems(t *testing.T) {
	claims := cashierClaims()
	order := testOrder(claims.UserID)

	store := &mockOrderHandlerStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			if id != order.ID {
				return database.Order{}, pgx.ErrNoRows
			}
			return order, nil
		},
		listOrderItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
			return []database.OrderItem{
				{ID: uuid.New(), OrderID: orderID, MenuID: uuid.New(), Name: "Es Teh", Price: testNumeric("5000.00"), Quantity: 1},
			}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/orders/"+order.ID.String(), nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeJSONMap(t, rr)
	items, ok := resp["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("items: got %v, want 1 entry", resp["items"])
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderHandlerStore{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/orders/"+uuid.NewString(), nil, cashierClaims())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Status update tests ---

func TestOrderUpdateStatus_Broadcasts(t *testing.T) {
	claims := &auth.Claims{UserID: uuid.New(), Role: enum.RoleKitchen}
	order := testOrder(uuid.New())

	store := &mockOrderHandlerStore{
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			if arg.Status != enum.OrderStatusProcessing {
				t.Errorf("status: got %s, want Processing", arg.Status)
			}
			order.Status = arg.Status
			return order, nil
		},
	}
	notifier := &mockNotifier{}
	router := setupOrderRouter(&mockOrderService{}, store, notifier)

	rr := doAuthRequest(t, router, "PUT", "/orders/"+order.ID.String()+"/status", map[string]string{
		"status": enum.OrderStatusProcessing,
	}, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	if len(notifier.events) != 1 {
		t.Fatalf("broadcast count: got %d, want 1", len(notifier.events))
	}
	if notifier.events[0].Type != ws.EventOrderStatusUpdated {
		t.Errorf("event type: got %s, want %s", notifier.events[0].Type, ws.EventOrderStatusUpdated)
	}
}

func TestOrderUpdateStatus_Empty(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderHandlerStore{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "PUT", "/orders/"+uuid.NewString()+"/status", map[string]string{
		"status": "",
	}, cashierClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Delivery status tests ---

func TestOrderUpdateDeliveryStatus_AssignsDriver(t *testing.T) {
	claims := cashierClaims()
	driverID := uuid.New()
	order := testOrder(claims.UserID)

	store := &mockOrderHandlerStore{
		updateDeliveryStatusFn: func(ctx context.Context, arg database.UpdateDeliveryStatusParams) (database.Order, error) {
			if !arg.DriverID.Valid || uuid.UUID(arg.DriverID.Bytes) != driverID {
				t.Errorf("driver_id: got %v, want %v", arg.DriverID, driverID)
			}
			order.DeliveryStatus = arg.DeliveryStatus
			order.DriverID = arg.DriverID
			return order, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockNotifier{})

	rr := doAuthRequest(t, router, "PUT", "/orders/"+order.ID.String()+"/delivery-status", map[string]string{
		"delivery_status": enum.DeliveryStatusDriverPending,
		"driver_id":       driverID.String(),
	}, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestOrderUpdateDeliveryStatus_KeepsDriverOnLaterStages(t *testing.T) {
	claims := cashierClaims()
	order := testOrder(claims.UserID)

	store := &mockOrderHandlerStore{
		updateDeliveryStatusFn: func(ctx context.Context, arg database.UpdateDeliveryStatusParams) (database.Order, error) {
			if arg.DriverID.Valid {
				t.Error("driver_id should not be set outside driver assignment")
			}
			return order, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockNotifier{})

	rr := doAuthRequest(t, router, "PUT", "/orders/"+order.ID.String()+"/delivery-status", map[string]string{
		"delivery_status": enum.DeliveryStatusDriverOnTheWay,
		"driver_id":       uuid.NewString(),
	}, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

// --- Customer lookup tests ---

func TestCustomerLookup_Known(t *testing.T) {
	store := &mockOrderHandlerStore{
		getLatestOrderByPhoneFn: func(ctx context.Context, phone string) (database.Order, error) {
			if phone != "0812000111" {
				return database.Order{}, pgx.ErrNoRows
			}
			return database.Order{CustomerName: "Budi", CustomerPhone: phone}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/customer?phone=0812000111", nil, cashierClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeJSONMap(t, rr)
	if resp["name"] != "Budi" {
		t.Errorf("name: got %v, want Budi", resp["name"])
	}
}

func TestCustomerLookup_Unknown(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderHandlerStore{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/customer?phone=0899999999", nil, cashierClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp != nil {
		t.Errorf("body: got %v, want null", resp)
	}
}

func TestCustomerLookup_MissingPhone(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderHandlerStore{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/customer", nil, cashierClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
