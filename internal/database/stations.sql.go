package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const stationColumns = `id, hub_id, name, name_es, description, color, icon,
    printer_name, sort_order, is_active, created_at, updated_at`

const createStation = `-- name: CreateStation :one
INSERT INTO kitchen_stations (
    hub_id, name, name_es, description, color, icon, printer_name, sort_order
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
)
RETURNING ` + stationColumns + `
`

type CreateStationParams struct {
	HubID       uuid.UUID
	Name        string
	NameEs      pgtype.Text
	Description pgtype.Text
	Color       string
	Icon        string
	PrinterName pgtype.Text
	SortOrder   int32
}

func (q *Queries) CreateStation(ctx context.Context, arg CreateStationParams) (KitchenStation, error) {
	row := q.db.QueryRow(ctx, createStation,
		arg.HubID, arg.Name, arg.NameEs, arg.Description,
		arg.Color, arg.Icon, arg.PrinterName, arg.SortOrder,
	)
	return scanStation(row)
}

const getStation = `-- name: GetStation :one
SELECT ` + stationColumns + `
FROM kitchen_stations
WHERE id = $1 AND hub_id = $2
`

type GetStationParams struct {
	ID    uuid.UUID
	HubID uuid.UUID
}

func (q *Queries) GetStation(ctx context.Context, arg GetStationParams) (KitchenStation, error) {
	row := q.db.QueryRow(ctx, getStation, arg.ID, arg.HubID)
	return scanStation(row)
}

const listStationsByHub = `-- name: ListStationsByHub :many
SELECT ` + stationColumns + `
FROM kitchen_stations
WHERE hub_id = $1
ORDER BY sort_order, name
`

func (q *Queries) ListStationsByHub(ctx context.Context, hubID uuid.UUID) ([]KitchenStation, error) {
	rows, err := q.db.Query(ctx, listStationsByHub, hubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStations(rows)
}

const listActiveStations = `-- name: ListActiveStations :many
SELECT ` + stationColumns + `
FROM kitchen_stations
WHERE hub_id = $1 AND is_active = true
ORDER BY sort_order, name
`

func (q *Queries) ListActiveStations(ctx context.Context, hubID uuid.UUID) ([]KitchenStation, error) {
	rows, err := q.db.Query(ctx, listActiveStations, hubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStations(rows)
}

const updateStation = `-- name: UpdateStation :one
UPDATE kitchen_stations
SET name = $3, name_es = $4, description = $5, color = $6, icon = $7,
    printer_name = $8, sort_order = $9, is_active = $10, updated_at = now()
WHERE id = $1 AND hub_id = $2
RETURNING ` + stationColumns + `
`

type UpdateStationParams struct {
	ID          uuid.UUID
	HubID       uuid.UUID
	Name        string
	NameEs      pgtype.Text
	Description pgtype.Text
	Color       string
	Icon        string
	PrinterName pgtype.Text
	SortOrder   int32
	IsActive    bool
}

func (q *Queries) UpdateStation(ctx context.Context, arg UpdateStationParams) (KitchenStation, error) {
	row := q.db.QueryRow(ctx, updateStation,
		arg.ID, arg.HubID, arg.Name, arg.NameEs, arg.Description,
		arg.Color, arg.Icon, arg.PrinterName, arg.SortOrder, arg.IsActive,
	)
	return scanStation(row)
}

const deactivateStation = `-- name: DeactivateStation :one
UPDATE kitchen_stations
SET is_active = false, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_active = true
RETURNING id
`

type DeactivateStationParams struct {
	ID    uuid.UUID
	HubID uuid.UUID
}

func (q *Queries) DeactivateStation(ctx context.Context, arg DeactivateStationParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deactivateStation, arg.ID, arg.HubID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const stationPendingCounts = `-- name: StationPendingCounts :many
SELECT i.station_id, COUNT(*) AS pending_count
FROM order_items i
WHERE i.hub_id = $1 AND i.station_id IS NOT NULL
  AND i.status IN ('pending', 'preparing') AND i.is_deleted = false
GROUP BY i.station_id
`

type StationPendingCountsRow struct {
	StationID    pgtype.UUID
	PendingCount int64
}

func (q *Queries) StationPendingCounts(ctx context.Context, hubID uuid.UUID) ([]StationPendingCountsRow, error) {
	rows, err := q.db.Query(ctx, stationPendingCounts, hubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StationPendingCountsRow
	for rows.Next() {
		var r StationPendingCountsRow
		if err := rows.Scan(&r.StationID, &r.PendingCount); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanStation(row rowScanner) (KitchenStation, error) {
	var s KitchenStation
	err := row.Scan(
		&s.ID, &s.HubID, &s.Name, &s.NameEs, &s.Description, &s.Color, &s.Icon,
		&s.PrinterName, &s.SortOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func scanStations(rows rowsScanner) ([]KitchenStation, error) {
	var items []KitchenStation
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
