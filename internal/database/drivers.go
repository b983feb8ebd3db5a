package database

import (
	"context"

	"github.com/google/uuid"
)

const driverColumns = `id, name, vehicle, number_plate, created_at`

func scanDriver(row interface{ Scan(...any) error }) (Driver, error) {
	var d Driver
	err := row.Scan(&d.ID, &d.Name, &d.Vehicle, &d.NumberPlate, &d.CreatedAt)
	return d, err
}

const listDrivers = `SELECT ` + driverColumns + ` FROM drivers ORDER BY name`

func (q *Queries) ListDrivers(ctx context.Context) ([]Driver, error) {
	rows, err := q.db.Query(ctx, listDrivers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

const getDriver = `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

func (q *Queries) GetDriver(ctx context.Context, id uuid.UUID) (Driver, error) {
	return scanDriver(q.db.QueryRow(ctx, getDriver, id))
}

type CreateDriverParams struct {
	Name        string
	Vehicle     string
	NumberPlate string
}

const createDriver = `
INSERT INTO drivers (name, vehicle, number_plate)
VALUES ($1, $2, $3)
RETURNING ` + driverColumns

func (q *Queries) CreateDriver(ctx context.Context, arg CreateDriverParams) (Driver, error) {
	return scanDriver(q.db.QueryRow(ctx, createDriver, arg.Name, arg.Vehicle, arg.NumberPlate))
}

const deleteDriver = `DELETE FROM drivers WHERE id = $1 RETURNING id`

func (q *Queries) DeleteDriver(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteDriver, id).Scan(&deleted)
	return deleted, err
}
