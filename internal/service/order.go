package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidMenuID        = errors.New("invalid menu_id")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrOutOfStock           = errors.New("insufficient stock")
	ErrMissingTable         = errors.New("table_no is required")
	ErrMissingPhone         = errors.New("customer_phone is required")
	ErrCustomerNameRequired = errors.New("customer_name is required for new customers")
	ErrInvalidDeliveryType  = errors.New("invalid delivery_type")
	ErrInvalidPayment       = errors.New("invalid payment amount")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	DecrementMenuStock(ctx context.Context, arg database.DecrementMenuStockParams) (int32, error)
	GetChargeSetting(ctx context.Context, chargeType string) (database.ChargeSetting, error)
	GetLatestOrderByPhone(ctx context.Context, phone string) (database.Order, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	CashierID       uuid.UUID
	CustomerName    string
	CustomerPhone   string
	TableNo         string
	DeliveryType    string
	DeliveryNote    string
	PayCash         string
	PayCard         string
	PayBankTransfer string
	PaymentNotes    string
	Items           []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single line in the order.
type CreateOrderItemRequest struct {
	MenuID   string
	Quantity int32
}

// CreateOrderResult is the full created order with its line items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// preparedItem holds a priced line item waiting for the order ID.
type preparedItem struct {
	menuID   uuid.UUID
	name     string
	price    decimal.Decimal
	imageURL pgtype.Text
	quantity int32
}

// CreateOrder validates, prices, and persists an order atomically. Stock is
// decremented inside the same transaction with a conditional update, so a
// line that would oversell aborts the whole order and no stock moves.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if req.TableNo == "" {
		return nil, ErrMissingTable
	}
	if req.CustomerPhone == "" {
		return nil, ErrMissingPhone
	}

	// Takeaway orders default to customer pickup; dine-in orders carry no
	// fulfillment mode.
	if req.TableNo == enum.TableTakeaway {
		switch req.DeliveryType {
		case "":
			req.DeliveryType = enum.DeliveryTypePickup
		case enum.DeliveryTypePickup, enum.DeliveryTypeService:
		default:
			return nil, ErrInvalidDeliveryType
		}
	}

	payCash, err := parsePayment(req.PayCash)
	if err != nil {
		return nil, err
	}
	payCard, err := parsePayment(req.PayCard)
	if err != nil {
		return nil, err
	}
	payBank, err := parsePayment(req.PayBankTransfer)
	if err != nil {
		return nil, err
	}

	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Resolve customer name ---
	customerName := req.CustomerName
	if customerName == "" {
		prev, err := store.GetLatestOrderByPhone(ctx, req.CustomerPhone)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrCustomerNameRequired
			}
			return nil, fmt.Errorf("lookup customer: %w", err)
		}
		customerName = prev.CustomerName
	}

	// --- Price items and reserve stock ---
	subtotal := decimal.Zero
	var items []preparedItem

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		menuID, err := uuid.Parse(item.MenuID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuID)
		}

		menu, err := store.GetMenuItem(ctx, menuID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}

		// Zero rows updated means not enough stock on hand.
		_, err = store.DecrementMenuStock(ctx, database.DecrementMenuStockParams{
			ID:       menuID,
			Quantity: item.Quantity,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("only %d left in stock for %s: %w", menu.CurrentQty, menu.Name, ErrOutOfStock)
			}
			return nil, fmt.Errorf("item[%d]: decrement stock: %w", i, err)
		}

		price := numericToDecimal(menu.Price)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt32(item.Quantity)))

		items = append(items, preparedItem{
			menuID:   menuID,
			name:     menu.Name,
			price:    price,
			imageURL: menu.ImageUrl,
			quantity: item.Quantity,
		})
	}

	// --- Apply charge policy ---
	// Dine-in orders get the percentage service charge; takeaway orders with
	// driver delivery get the flat delivery fee. Never both.
	serviceCharge := decimal.Zero
	deliveryCharge := decimal.Zero
	deliveryStatus := ""

	if req.TableNo == enum.TableTakeaway {
		switch req.DeliveryType {
		case enum.DeliveryTypePickup:
			deliveryStatus = enum.DeliveryStatusCustomerPending
		case enum.DeliveryTypeService:
			deliveryStatus = enum.DeliveryStatusDriverPending
			setting, err := store.GetChargeSetting(ctx, enum.ChargeTypeDelivery)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("get delivery charge: %w", err)
			}
			if err == nil && setting.IsActive {
				deliveryCharge = numericToDecimal(setting.Amount)
			}
		}
	} else {
		setting, err := store.GetChargeSetting(ctx, enum.ChargeTypeService)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get service charge: %w", err)
		}
		if err == nil && setting.IsActive {
			pct := numericToDecimal(setting.Percentage)
			serviceCharge = subtotal.Mul(pct).Div(decimal.NewFromInt(100))
		}
	}

	totalPrice := subtotal.Add(serviceCharge).Add(deliveryCharge)

	// --- Payment snapshot ---
	// change_due may be negative: the balance is still owed.
	totalPaid := payCash.Add(payCard).Add(payBank)
	changeDue := totalPaid.Sub(totalPrice)

	deliveryNote := pgtype.Text{}
	if req.DeliveryNote != "" {
		deliveryNote = pgtype.Text{String: req.DeliveryNote, Valid: true}
	}
	paymentNotes := pgtype.Text{}
	if req.PaymentNotes != "" {
		paymentNotes = pgtype.Text{String: req.PaymentNotes, Valid: true}
	}

	// --- Insert order ---
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		InvoiceNo:       newInvoiceNo(),
		CustomerName:    customerName,
		CustomerPhone:   req.CustomerPhone,
		TableNo:         req.TableNo,
		Subtotal:        decimalToNumeric(subtotal),
		ServiceCharge:   decimalToNumeric(serviceCharge),
		DeliveryType:    req.DeliveryType,
		DeliveryCharge:  decimalToNumeric(deliveryCharge),
		DeliveryNote:    deliveryNote,
		DeliveryStatus:  deliveryStatus,
		TotalPrice:      decimalToNumeric(totalPrice),
		PayCash:         decimalToNumeric(payCash),
		PayCard:         decimalToNumeric(payCard),
		PayBankTransfer: decimalToNumeric(payBank),
		TotalPaid:       decimalToNumeric(totalPaid),
		ChangeDue:       decimalToNumeric(changeDue),
		PaymentNotes:    paymentNotes,
		CashierID:       req.CashierID,
		Status:          enum.OrderStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// --- Insert items ---
	var created []database.OrderItem
	for _, pi := range items {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:  order.ID,
			MenuID:   pi.menuID,
			Name:     pi.name,
			Price:    decimalToNumeric(pi.price),
			ImageUrl: pi.imageURL,
			Quantity: pi.quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		created = append(created, item)
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: created}, nil
}

// --- Helpers ---

// newInvoiceNo builds the human-facing receipt label. The order's UUID is the
// real identifier; this string only has to be unique enough for a till slip.
func newInvoiceNo() string {
	return fmt.Sprintf("INV-%d-%d", time.Now().UnixMilli(), rand.IntN(1000))
}

// parsePayment parses a tender amount. Empty means nothing was paid with
// that method.
func parsePayment(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidPayment
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidPayment
	}
	return d, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
