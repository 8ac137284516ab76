package database

import (
	"context"

	"github.com/google/uuid"
)

const settingsColumns = `hub_id, auto_print_tickets, show_prep_time, alert_threshold_minutes,
    use_rounds, auto_fire_on_round, default_order_type, sound_on_new_order, updated_at`

const ensureSettings = `-- name: EnsureSettings :exec
INSERT INTO orders_settings (hub_id)
VALUES ($1)
ON CONFLICT (hub_id) DO NOTHING
`

func (q *Queries) EnsureSettings(ctx context.Context, hubID uuid.UUID) error {
	_, err := q.db.Exec(ctx, ensureSettings, hubID)
	return err
}

const getSettings = `-- name: GetSettings :one
SELECT ` + settingsColumns + `
FROM orders_settings
WHERE hub_id = $1
`

func (q *Queries) GetSettings(ctx context.Context, hubID uuid.UUID) (OrdersSettings, error) {
	row := q.db.QueryRow(ctx, getSettings, hubID)
	return scanSettings(row)
}

const updateSettings = `-- name: UpdateSettings :one
UPDATE orders_settings
SET auto_print_tickets = $2, show_prep_time = $3, alert_threshold_minutes = $4,
    use_rounds = $5, auto_fire_on_round = $6, default_order_type = $7,
    sound_on_new_order = $8, updated_at = now()
WHERE hub_id = $1
RETURNING ` + settingsColumns + `
`

type UpdateSettingsParams struct {
	HubID                 uuid.UUID
	AutoPrintTickets      bool
	ShowPrepTime          bool
	AlertThresholdMinutes int32
	UseRounds             bool
	AutoFireOnRound       bool
	DefaultOrderType      string
	SoundOnNewOrder       bool
}

func (q *Queries) UpdateSettings(ctx context.Context, arg UpdateSettingsParams) (OrdersSettings, error) {
	row := q.db.QueryRow(ctx, updateSettings,
		arg.HubID, arg.AutoPrintTickets, arg.ShowPrepTime, arg.AlertThresholdMinutes,
		arg.UseRounds, arg.AutoFireOnRound, arg.DefaultOrderType, arg.SoundOnNewOrder,
	)
	return scanSettings(row)
}

func scanSettings(row rowScanner) (OrdersSettings, error) {
	var s OrdersSettings
	err := row.Scan(
		&s.HubID, &s.AutoPrintTickets, &s.ShowPrepTime, &s.AlertThresholdMinutes,
		&s.UseRounds, &s.AutoFireOnRound, &s.DefaultOrderType, &s.SoundOnNewOrder,
		&s.UpdatedAt,
	)
	return s, err
}
