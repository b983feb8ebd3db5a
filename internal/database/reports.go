package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Aggregations for the admin dashboards. All sums are COALESCEd so empty
// ranges come back as zero rather than NULL.

type DateRangeParams struct {
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
}

type GetOrderTotalsRow struct {
	TotalIncome    pgtype.Numeric
	TotalOrders    int64
	TotalCash      pgtype.Numeric
	TotalCard      pgtype.Numeric
	TotalBank      pgtype.Numeric
	TotalChangeDue pgtype.Numeric
}

const getOrderTotals = `
SELECT COALESCE(SUM(total_price), 0),
       COUNT(*),
       COALESCE(SUM(pay_cash), 0),
       COALESCE(SUM(pay_card), 0),
       COALESCE(SUM(pay_bank_transfer), 0),
       COALESCE(SUM(change_due), 0)
FROM orders
WHERE ($1::timestamptz IS NULL OR created_at >= $1)
  AND ($2::timestamptz IS NULL OR created_at <= $2)`

func (q *Queries) GetOrderTotals(ctx context.Context, arg DateRangeParams) (GetOrderTotalsRow, error) {
	var row GetOrderTotalsRow
	err := q.db.QueryRow(ctx, getOrderTotals, arg.StartDate, arg.EndDate).Scan(
		&row.TotalIncome, &row.TotalOrders, &row.TotalCash, &row.TotalCard,
		&row.TotalBank, &row.TotalChangeDue)
	return row, err
}

type CountOrdersByStatusRow struct {
	Status string
	Count  int64
}

const countOrdersByStatus = `
SELECT status, COUNT(*)
FROM orders
WHERE ($1::timestamptz IS NULL OR created_at >= $1)
  AND ($2::timestamptz IS NULL OR created_at <= $2)
GROUP BY status`

func (q *Queries) CountOrdersByStatus(ctx context.Context, arg DateRangeParams) ([]CountOrdersByStatusRow, error) {
	rows, err := q.db.Query(ctx, countOrdersByStatus, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CountOrdersByStatusRow
	for rows.Next() {
		var r CountOrdersByStatusRow
		if err := rows.Scan(&r.Status, &r.Count); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

type TopMenuItemsParams struct {
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
	Limit     int32
}

type TopMenuItemsRow struct {
	Name     string
	Quantity int64
}

const topMenuItems = `
SELECT oi.name, SUM(oi.quantity)::bigint AS quantity
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE ($1::timestamptz IS NULL OR o.created_at >= $1)
  AND ($2::timestamptz IS NULL OR o.created_at <= $2)
GROUP BY oi.name
ORDER BY quantity DESC
LIMIT $3`

func (q *Queries) TopMenuItems(ctx context.Context, arg TopMenuItemsParams) ([]TopMenuItemsRow, error) {
	rows, err := q.db.Query(ctx, topMenuItems, arg.StartDate, arg.EndDate, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TopMenuItemsRow
	for rows.Next() {
		var r TopMenuItemsRow
		if err := rows.Scan(&r.Name, &r.Quantity); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// --- Expense-side totals ---

type FinanceRangeParams struct {
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

const sumExpensesInRange = `
SELECT COALESCE(SUM(amount), 0) FROM expenses
WHERE ($1::date IS NULL OR date >= $1) AND ($2::date IS NULL OR date <= $2)`

func (q *Queries) SumExpensesInRange(ctx context.Context, arg FinanceRangeParams) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, sumExpensesInRange, arg.StartDate, arg.EndDate).Scan(&total)
	return total, err
}

const sumKitchenBillsInRange = `
SELECT COALESCE(SUM(amount), 0) FROM kitchen_bills
WHERE ($1::date IS NULL OR date >= $1) AND ($2::date IS NULL OR date <= $2)`

func (q *Queries) SumKitchenBillsInRange(ctx context.Context, arg FinanceRangeParams) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, sumKitchenBillsInRange, arg.StartDate, arg.EndDate).Scan(&total)
	return total, err
}

const sumSalariesInRange = `
SELECT COALESCE(SUM(total), 0) FROM salaries
WHERE ($1::date IS NULL OR date >= $1) AND ($2::date IS NULL OR date <= $2)`

func (q *Queries) SumSalariesInRange(ctx context.Context, arg FinanceRangeParams) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, sumSalariesInRange, arg.StartDate, arg.EndDate).Scan(&total)
	return total, err
}

// --- Monthly buckets (yearly trend) ---

type MonthlyTotalRow struct {
	Month int32
	Total pgtype.Numeric
	Count int64
}

const monthlyOrderTotals = `
SELECT EXTRACT(MONTH FROM created_at)::int, COALESCE(SUM(total_price), 0), COUNT(*)
FROM orders
WHERE EXTRACT(YEAR FROM created_at)::int = $1
GROUP BY 1
ORDER BY 1`

func (q *Queries) MonthlyOrderTotals(ctx context.Context, year int32) ([]MonthlyTotalRow, error) {
	return q.queryMonthlyTotals(ctx, monthlyOrderTotals, year)
}

const monthlyExpenseTotals = `
SELECT EXTRACT(MONTH FROM date)::int, COALESCE(SUM(amount), 0), COUNT(*)
FROM expenses
WHERE EXTRACT(YEAR FROM date)::int = $1
GROUP BY 1
ORDER BY 1`

func (q *Queries) MonthlyExpenseTotals(ctx context.Context, year int32) ([]MonthlyTotalRow, error) {
	return q.queryMonthlyTotals(ctx, monthlyExpenseTotals, year)
}

const monthlyKitchenBillTotals = `
SELECT EXTRACT(MONTH FROM date)::int, COALESCE(SUM(amount), 0), COUNT(*)
FROM kitchen_bills
WHERE EXTRACT(YEAR FROM date)::int = $1
GROUP BY 1
ORDER BY 1`

func (q *Queries) MonthlyKitchenBillTotals(ctx context.Context, year int32) ([]MonthlyTotalRow, error) {
	return q.queryMonthlyTotals(ctx, monthlyKitchenBillTotals, year)
}

const monthlySalaryTotals = `
SELECT EXTRACT(MONTH FROM date)::int, COALESCE(SUM(total), 0), COUNT(*)
FROM salaries
WHERE EXTRACT(YEAR FROM date)::int = $1
GROUP BY 1
ORDER BY 1`

func (q *Queries) MonthlySalaryTotals(ctx context.Context, year int32) ([]MonthlyTotalRow, error) {
	return q.queryMonthlyTotals(ctx, monthlySalaryTotals, year)
}

func (q *Queries) queryMonthlyTotals(ctx context.Context, sql string, year int32) ([]MonthlyTotalRow, error) {
	rows, err := q.db.Query(ctx, sql, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MonthlyTotalRow
	for rows.Next() {
		var r MonthlyTotalRow
		if err := rows.Scan(&r.Month, &r.Total, &r.Count); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// --- Daily buckets (monthly report) ---

type DailyTotalRow struct {
	Day   pgtype.Date
	Total pgtype.Numeric
}

const dailyOrderTotals = `
SELECT created_at::date, COALESCE(SUM(total_price), 0)
FROM orders
WHERE created_at >= $1 AND created_at <= $2
GROUP BY 1
ORDER BY 1`

func (q *Queries) DailyOrderTotals(ctx context.Context, arg DateRangeParams) ([]DailyTotalRow, error) {
	return q.queryDailyTotals(ctx, dailyOrderTotals, arg.StartDate, arg.EndDate)
}

const dailyExpenseTotals = `
SELECT date, COALESCE(SUM(amount), 0)
FROM expenses
WHERE date >= $1::date AND date <= $2::date
GROUP BY 1
ORDER BY 1`

func (q *Queries) DailyExpenseTotals(ctx context.Context, arg DateRangeParams) ([]DailyTotalRow, error) {
	return q.queryDailyTotals(ctx, dailyExpenseTotals, arg.StartDate, arg.EndDate)
}

const dailyKitchenBillTotals = `
SELECT date, COALESCE(SUM(amount), 0)
FROM kitchen_bills
WHERE date >= $1::date AND date <= $2::date
GROUP BY 1
ORDER BY 1`

func (q *Queries) DailyKitchenBillTotals(ctx context.Context, arg DateRangeParams) ([]DailyTotalRow, error) {
	return q.queryDailyTotals(ctx, dailyKitchenBillTotals, arg.StartDate, arg.EndDate)
}

const dailySalaryTotals = `
SELECT date, COALESCE(SUM(total), 0)
FROM salaries
WHERE date >= $1::date AND date <= $2::date
GROUP BY 1
ORDER BY 1`

func (q *Queries) DailySalaryTotals(ctx context.Context, arg DateRangeParams) ([]DailyTotalRow, error) {
	return q.queryDailyTotals(ctx, dailySalaryTotals, arg.StartDate, arg.EndDate)
}

func (q *Queries) queryDailyTotals(ctx context.Context, sql string, start, end pgtype.Timestamptz) ([]DailyTotalRow, error) {
	rows, err := q.db.Query(ctx, sql, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DailyTotalRow
	for rows.Next() {
		var r DailyTotalRow
		if err := rows.Scan(&r.Day, &r.Total); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
