package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Suppliers ---

const supplierColumns = `id, name, company_name, contact, email, address, created_at`

func scanSupplier(row interface{ Scan(...any) error }) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.CompanyName, &s.Contact, &s.Email, &s.Address, &s.CreatedAt)
	return s, err
}

const listSuppliers = `SELECT ` + supplierColumns + ` FROM suppliers ORDER BY name`

func (q *Queries) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := q.db.Query(ctx, listSuppliers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

type CreateSupplierParams struct {
	Name        string
	CompanyName string
	Contact     string
	Email       pgtype.Text
	Address     pgtype.Text
}

const createSupplier = `
INSERT INTO suppliers (name, company_name, contact, email, address)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + supplierColumns

func (q *Queries) CreateSupplier(ctx context.Context, arg CreateSupplierParams) (Supplier, error) {
	return scanSupplier(q.db.QueryRow(ctx, createSupplier,
		arg.Name, arg.CompanyName, arg.Contact, arg.Email, arg.Address))
}

type UpdateSupplierParams struct {
	ID          uuid.UUID
	Name        string
	CompanyName string
	Contact     string
	Email       pgtype.Text
	Address     pgtype.Text
}

const updateSupplier = `
UPDATE suppliers SET name = $2, company_name = $3, contact = $4, email = $5, address = $6
WHERE id = $1
RETURNING ` + supplierColumns

func (q *Queries) UpdateSupplier(ctx context.Context, arg UpdateSupplierParams) (Supplier, error) {
	return scanSupplier(q.db.QueryRow(ctx, updateSupplier,
		arg.ID, arg.Name, arg.CompanyName, arg.Contact, arg.Email, arg.Address))
}

const deleteSupplier = `DELETE FROM suppliers WHERE id = $1 RETURNING id`

func (q *Queries) DeleteSupplier(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteSupplier, id).Scan(&deleted)
	return deleted, err
}

// --- Supplier expenses ---

const expenseColumns = `id, supplier_id, description, amount, date`

func scanExpense(row interface{ Scan(...any) error }) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.SupplierID, &e.Description, &e.Amount, &e.Date)
	return e, err
}

type ListExpensesParams struct {
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

const listExpenses = `
SELECT ` + expenseColumns + ` FROM expenses
WHERE ($1::date IS NULL OR date >= $1)
  AND ($2::date IS NULL OR date <= $2)
ORDER BY date DESC`

func (q *Queries) ListExpenses(ctx context.Context, arg ListExpensesParams) ([]Expense, error) {
	rows, err := q.db.Query(ctx, listExpenses, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

type CreateExpenseParams struct {
	SupplierID  pgtype.UUID
	Description string
	Amount      pgtype.Numeric
	Date        pgtype.Date
}

const createExpense = `
INSERT INTO expenses (supplier_id, description, amount, date)
VALUES ($1, $2, $3, $4)
RETURNING ` + expenseColumns

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	return scanExpense(q.db.QueryRow(ctx, createExpense,
		arg.SupplierID, arg.Description, arg.Amount, arg.Date))
}

type UpdateExpenseParams struct {
	ID          uuid.UUID
	SupplierID  pgtype.UUID
	Description string
	Amount      pgtype.Numeric
	Date        pgtype.Date
}

const updateExpense = `
UPDATE expenses SET supplier_id = $2, description = $3, amount = $4, date = $5
WHERE id = $1
RETURNING ` + expenseColumns

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (Expense, error) {
	return scanExpense(q.db.QueryRow(ctx, updateExpense,
		arg.ID, arg.SupplierID, arg.Description, arg.Amount, arg.Date))
}

const deleteExpense = `DELETE FROM expenses WHERE id = $1 RETURNING id`

func (q *Queries) DeleteExpense(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteExpense, id).Scan(&deleted)
	return deleted, err
}

// --- Utility bills ---

const kitchenBillColumns = `id, description, amount, date`

func scanKitchenBill(row interface{ Scan(...any) error }) (KitchenBill, error) {
	var b KitchenBill
	err := row.Scan(&b.ID, &b.Description, &b.Amount, &b.Date)
	return b, err
}

type ListKitchenBillsParams struct {
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

const listKitchenBills = `
SELECT ` + kitchenBillColumns + ` FROM kitchen_bills
WHERE ($1::date IS NULL OR date >= $1)
  AND ($2::date IS NULL OR date <= $2)
ORDER BY date DESC`

func (q *Queries) ListKitchenBills(ctx context.Context, arg ListKitchenBillsParams) ([]KitchenBill, error) {
	rows, err := q.db.Query(ctx, listKitchenBills, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []KitchenBill
	for rows.Next() {
		b, err := scanKitchenBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

type CreateKitchenBillParams struct {
	Description string
	Amount      pgtype.Numeric
	Date        pgtype.Date
}

const createKitchenBill = `
INSERT INTO kitchen_bills (description, amount, date)
VALUES ($1, $2, $3)
RETURNING ` + kitchenBillColumns

func (q *Queries) CreateKitchenBill(ctx context.Context, arg CreateKitchenBillParams) (KitchenBill, error) {
	return scanKitchenBill(q.db.QueryRow(ctx, createKitchenBill,
		arg.Description, arg.Amount, arg.Date))
}

type UpdateKitchenBillParams struct {
	ID          uuid.UUID
	Description string
	Amount      pgtype.Numeric
	Date        pgtype.Date
}

const updateKitchenBill = `
UPDATE kitchen_bills SET description = $2, amount = $3, date = $4
WHERE id = $1
RETURNING ` + kitchenBillColumns

func (q *Queries) UpdateKitchenBill(ctx context.Context, arg UpdateKitchenBillParams) (KitchenBill, error) {
	return scanKitchenBill(q.db.QueryRow(ctx, updateKitchenBill,
		arg.ID, arg.Description, arg.Amount, arg.Date))
}

const deleteKitchenBill = `DELETE FROM kitchen_bills WHERE id = $1 RETURNING id`

func (q *Queries) DeleteKitchenBill(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteKitchenBill, id).Scan(&deleted)
	return deleted, err
}

// --- Salaries ---

const salaryColumns = `id, employee_name, total, date`

func scanSalary(row interface{ Scan(...any) error }) (Salary, error) {
	var s Salary
	err := row.Scan(&s.ID, &s.EmployeeName, &s.Total, &s.Date)
	return s, err
}

type ListSalariesParams struct {
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

const listSalaries = `
SELECT ` + salaryColumns + ` FROM salaries
WHERE ($1::date IS NULL OR date >= $1)
  AND ($2::date IS NULL OR date <= $2)
ORDER BY date DESC`

func (q *Queries) ListSalaries(ctx context.Context, arg ListSalariesParams) ([]Salary, error) {
	rows, err := q.db.Query(ctx, listSalaries, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var salaries []Salary
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		salaries = append(salaries, s)
	}
	return salaries, rows.Err()
}

type CreateSalaryParams struct {
	EmployeeName string
	Total        pgtype.Numeric
	Date         pgtype.Date
}

const createSalary = `
INSERT INTO salaries (employee_name, total, date)
VALUES ($1, $2, $3)
RETURNING ` + salaryColumns

func (q *Queries) CreateSalary(ctx context.Context, arg CreateSalaryParams) (Salary, error) {
	return scanSalary(q.db.QueryRow(ctx, createSalary, arg.EmployeeName, arg.Total, arg.Date))
}

type UpdateSalaryParams struct {
	ID           uuid.UUID
	EmployeeName string
	Total        pgtype.Numeric
	Date         pgtype.Date
}

const updateSalary = `
UPDATE salaries SET employee_name = $2, total = $3, date = $4
WHERE id = $1
RETURNING ` + salaryColumns

func (q *Queries) UpdateSalary(ctx context.Context, arg UpdateSalaryParams) (Salary, error) {
	return scanSalary(q.db.QueryRow(ctx, updateSalary, arg.ID, arg.EmployeeName, arg.Total, arg.Date))
}

const deleteSalary = `DELETE FROM salaries WHERE id = $1 RETURNING id`

func (q *Queries) DeleteSalary(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteSalary, id).Scan(&deleted)
	return deleted, err
}
