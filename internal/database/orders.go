package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, invoice_no, customer_name, customer_phone, table_no,
	subtotal, service_charge, delivery_type, delivery_charge, delivery_note,
	delivery_status, driver_id, total_price, pay_cash, pay_card,
	pay_bank_transfer, total_paid, change_due, payment_notes, cashier_id,
	status, created_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.InvoiceNo, &o.CustomerName, &o.CustomerPhone, &o.TableNo,
		&o.Subtotal, &o.ServiceCharge, &o.DeliveryType, &o.DeliveryCharge, &o.DeliveryNote,
		&o.DeliveryStatus, &o.DriverID, &o.TotalPrice, &o.PayCash, &o.PayCard,
		&o.PayBankTransfer, &o.TotalPaid, &o.ChangeDue, &o.PaymentNotes, &o.CashierID,
		&o.Status, &o.CreatedAt)
	return o, err
}

func scanOrders(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close()
}) ([]Order, error) {
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type CreateOrderParams struct {
	InvoiceNo       string
	CustomerName    string
	CustomerPhone   string
	TableNo         string
	Subtotal        pgtype.Numeric
	ServiceCharge   pgtype.Numeric
	DeliveryType    string
	DeliveryCharge  pgtype.Numeric
	DeliveryNote    pgtype.Text
	DeliveryStatus  string
	TotalPrice      pgtype.Numeric
	PayCash         pgtype.Numeric
	PayCard         pgtype.Numeric
	PayBankTransfer pgtype.Numeric
	TotalPaid       pgtype.Numeric
	ChangeDue       pgtype.Numeric
	PaymentNotes    pgtype.Text
	CashierID       uuid.UUID
	Status          string
}

const createOrder = `
INSERT INTO orders (invoice_no, customer_name, customer_phone, table_no,
	subtotal, service_charge, delivery_type, delivery_charge, delivery_note,
	delivery_status, total_price, pay_cash, pay_card, pay_bank_transfer,
	total_paid, change_due, payment_notes, cashier_id, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
RETURNING ` + orderColumns

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.InvoiceNo, arg.CustomerName, arg.CustomerPhone, arg.TableNo,
		arg.Subtotal, arg.ServiceCharge, arg.DeliveryType, arg.DeliveryCharge,
		arg.DeliveryNote, arg.DeliveryStatus, arg.TotalPrice, arg.PayCash,
		arg.PayCard, arg.PayBankTransfer, arg.TotalPaid, arg.ChangeDue,
		arg.PaymentNotes, arg.CashierID, arg.Status))
}

const orderItemColumns = `id, order_id, menu_id, name, price, image_url, quantity`

func scanOrderItem(row interface{ Scan(...any) error }) (OrderItem, error) {
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.MenuID, &it.Name, &it.Price, &it.ImageUrl, &it.Quantity)
	return it, err
}

type CreateOrderItemParams struct {
	OrderID  uuid.UUID
	MenuID   uuid.UUID
	Name     string
	Price    pgtype.Numeric
	ImageUrl pgtype.Text
	Quantity int32
}

const createOrderItem = `
INSERT INTO order_items (order_id, menu_id, name, price, image_url, quantity)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderItemColumns

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.MenuID, arg.Name, arg.Price, arg.ImageUrl, arg.Quantity))
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const listOrderItemsByOrder = `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY id`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type ListOrdersParams struct {
	Status    pgtype.Text
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
}

const listOrders = `
SELECT ` + orderColumns + ` FROM orders
WHERE ($1::text IS NULL OR status = $1)
  AND ($2::timestamptz IS NULL OR created_at >= $2)
  AND ($3::timestamptz IS NULL OR created_at <= $3)
ORDER BY created_at DESC`

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Status, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

type ListTakeawayOrdersByCashierParams struct {
	CashierID uuid.UUID
	Status    pgtype.Text
}

const listTakeawayOrdersByCashier = `
SELECT ` + orderColumns + ` FROM orders
WHERE table_no = 'Takeaway'
  AND cashier_id = $1
  AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC`

func (q *Queries) ListTakeawayOrdersByCashier(ctx context.Context, arg ListTakeawayOrdersByCashierParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listTakeawayOrdersByCashier, arg.CashierID, arg.Status)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

// GetLatestOrderByPhone backs the customer-name autofill and the
// customer lookup endpoint.
const getLatestOrderByPhone = `
SELECT ` + orderColumns + ` FROM orders
WHERE customer_phone = $1
ORDER BY created_at DESC
LIMIT 1`

func (q *Queries) GetLatestOrderByPhone(ctx context.Context, phone string) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getLatestOrderByPhone, phone))
}

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

const updateOrderStatus = `
UPDATE orders SET status = $2 WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status))
}

type UpdateDeliveryStatusParams struct {
	ID             uuid.UUID
	DeliveryStatus string
	DriverID       pgtype.UUID
}

// The driver assignment is preserved when no driver is supplied.
const updateDeliveryStatus = `
UPDATE orders SET delivery_status = $2, driver_id = COALESCE($3, driver_id)
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) UpdateDeliveryStatus(ctx context.Context, arg UpdateDeliveryStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateDeliveryStatus, arg.ID, arg.DeliveryStatus, arg.DriverID))
}
