package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const chargeSettingColumns = `charge_type, percentage, amount, is_active, updated_at`

func scanChargeSetting(row interface{ Scan(...any) error }) (ChargeSetting, error) {
	var c ChargeSetting
	err := row.Scan(&c.ChargeType, &c.Percentage, &c.Amount, &c.IsActive, &c.UpdatedAt)
	return c, err
}

const getChargeSetting = `SELECT ` + chargeSettingColumns + ` FROM charge_settings WHERE charge_type = $1`

func (q *Queries) GetChargeSetting(ctx context.Context, chargeType string) (ChargeSetting, error) {
	return scanChargeSetting(q.db.QueryRow(ctx, getChargeSetting, chargeType))
}

type UpdateChargeSettingParams struct {
	ChargeType string
	Percentage pgtype.Numeric
	Amount     pgtype.Numeric
	IsActive   bool
}

const updateChargeSetting = `
UPDATE charge_settings SET percentage = $2, amount = $3, is_active = $4, updated_at = now()
WHERE charge_type = $1
RETURNING ` + chargeSettingColumns

func (q *Queries) UpdateChargeSetting(ctx context.Context, arg UpdateChargeSettingParams) (ChargeSetting, error) {
	return scanChargeSetting(q.db.QueryRow(ctx, updateChargeSetting,
		arg.ChargeType, arg.Percentage, arg.Amount, arg.IsActive))
}
