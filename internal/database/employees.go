package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const employeeColumns = `id, employee_code, name, position, phone, created_at`

func scanEmployee(row interface{ Scan(...any) error }) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.EmployeeCode, &e.Name, &e.Position, &e.Phone, &e.CreatedAt)
	return e, err
}

const listEmployees = `SELECT ` + employeeColumns + ` FROM employees ORDER BY employee_code`

func (q *Queries) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := q.db.Query(ctx, listEmployees)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

const getEmployee = `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

func (q *Queries) GetEmployee(ctx context.Context, id uuid.UUID) (Employee, error) {
	return scanEmployee(q.db.QueryRow(ctx, getEmployee, id))
}

const countEmployees = `SELECT count(*) FROM employees`

func (q *Queries) CountEmployees(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countEmployees).Scan(&count)
	return count, err
}

type CreateEmployeeParams struct {
	EmployeeCode string
	Name         string
	Position     string
	Phone        pgtype.Text
}

const createEmployee = `
INSERT INTO employees (employee_code, name, position, phone)
VALUES ($1, $2, $3, $4)
RETURNING ` + employeeColumns

func (q *Queries) CreateEmployee(ctx context.Context, arg CreateEmployeeParams) (Employee, error) {
	return scanEmployee(q.db.QueryRow(ctx, createEmployee,
		arg.EmployeeCode, arg.Name, arg.Position, arg.Phone))
}

type UpdateEmployeeParams struct {
	ID       uuid.UUID
	Name     string
	Position string
	Phone    pgtype.Text
}

const updateEmployee = `
UPDATE employees
SET name = $2, position = $3, phone = $4
WHERE id = $1
RETURNING ` + employeeColumns

func (q *Queries) UpdateEmployee(ctx context.Context, arg UpdateEmployeeParams) (Employee, error) {
	return scanEmployee(q.db.QueryRow(ctx, updateEmployee,
		arg.ID, arg.Name, arg.Position, arg.Phone))
}

const deleteEmployee = `DELETE FROM employees WHERE id = $1 RETURNING id`

func (q *Queries) DeleteEmployee(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteEmployee, id).Scan(&deleted)
	return deleted, err
}
