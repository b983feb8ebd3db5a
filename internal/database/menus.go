package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, name, category, description, price, cost, net_profit,
	current_qty, minimum_qty, image_url, created_at, updated_at`

func scanMenuItem(row interface{ Scan(...any) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Description, &m.Price, &m.Cost,
		&m.NetProfit, &m.CurrentQty, &m.MinimumQty, &m.ImageUrl, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const listMenuItems = `SELECT ` + menuItemColumns + ` FROM menu_items ORDER BY name`

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const getMenuItem = `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, id))
}

type CreateMenuItemParams struct {
	Name        string
	Category    pgtype.Text
	Description pgtype.Text
	Price       pgtype.Numeric
	Cost        pgtype.Numeric
	NetProfit   pgtype.Numeric
	CurrentQty  int32
	MinimumQty  int32
	ImageUrl    pgtype.Text
}

const createMenuItem = `
INSERT INTO menu_items (name, category, description, price, cost, net_profit, current_qty, minimum_qty, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + menuItemColumns

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, createMenuItem,
		arg.Name, arg.Category, arg.Description, arg.Price, arg.Cost, arg.NetProfit,
		arg.CurrentQty, arg.MinimumQty, arg.ImageUrl))
}

type UpdateMenuItemParams struct {
	ID          uuid.UUID
	Name        string
	Category    pgtype.Text
	Description pgtype.Text
	Price       pgtype.Numeric
	Cost        pgtype.Numeric
	NetProfit   pgtype.Numeric
	CurrentQty  int32
	MinimumQty  int32
	ImageUrl    pgtype.Text
}

const updateMenuItem = `
UPDATE menu_items SET
	name = $2,
	category = $3,
	description = $4,
	price = $5,
	cost = $6,
	net_profit = $7,
	current_qty = $8,
	minimum_qty = $9,
	image_url = $10,
	updated_at = now()
WHERE id = $1
RETURNING ` + menuItemColumns

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, updateMenuItem,
		arg.ID, arg.Name, arg.Category, arg.Description, arg.Price, arg.Cost,
		arg.NetProfit, arg.CurrentQty, arg.MinimumQty, arg.ImageUrl))
}

const deleteMenuItem = `DELETE FROM menu_items WHERE id = $1 RETURNING id`

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteMenuItem, id).Scan(&deleted)
	return deleted, err
}

type RestockMenuItemParams struct {
	ID    uuid.UUID
	Delta int32
}

// Restock only touches stock on hand. The reorder threshold (minimum_qty) is
// edited through the regular update endpoint.
const restockMenuItem = `
UPDATE menu_items SET current_qty = current_qty + $2, updated_at = now()
WHERE id = $1
RETURNING ` + menuItemColumns

func (q *Queries) RestockMenuItem(ctx context.Context, arg RestockMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, restockMenuItem, arg.ID, arg.Delta))
}

type DecrementMenuStockParams struct {
	ID       uuid.UUID
	Quantity int32
}

// Conditional decrement: updates zero rows when stock is insufficient, which
// callers treat as an out-of-stock failure. Combined with the CHECK
// constraint this makes oversell impossible even under concurrent orders.
const decrementMenuStock = `
UPDATE menu_items SET current_qty = current_qty - $2, updated_at = now()
WHERE id = $1 AND current_qty >= $2
RETURNING current_qty`

func (q *Queries) DecrementMenuStock(ctx context.Context, arg DecrementMenuStockParams) (int32, error) {
	var remaining int32
	err := q.db.QueryRow(ctx, decrementMenuStock, arg.ID, arg.Quantity).Scan(&remaining)
	return remaining, err
}
