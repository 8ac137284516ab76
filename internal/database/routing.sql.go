package database

import (
	"context"

	"github.com/google/uuid"
)

const upsertProductStation = `-- name: UpsertProductStation :one
INSERT INTO product_stations (hub_id, product_id, station_id)
VALUES ($1, $2, $3)
ON CONFLICT (hub_id, product_id) DO UPDATE SET station_id = EXCLUDED.station_id
RETURNING id, hub_id, product_id, station_id, created_at
`

type UpsertProductStationParams struct {
	HubID     uuid.UUID
	ProductID uuid.UUID
	StationID uuid.UUID
}

func (q *Queries) UpsertProductStation(ctx context.Context, arg UpsertProductStationParams) (ProductStation, error) {
	row := q.db.QueryRow(ctx, upsertProductStation, arg.HubID, arg.ProductID, arg.StationID)
	var m ProductStation
	err := row.Scan(&m.ID, &m.HubID, &m.ProductID, &m.StationID, &m.CreatedAt)
	return m, err
}

const upsertCategoryStation = `-- name: UpsertCategoryStation :one
INSERT INTO category_stations (hub_id, category_id, station_id)
VALUES ($1, $2, $3)
ON CONFLICT (hub_id, category_id) DO UPDATE SET station_id = EXCLUDED.station_id
RETURNING id, hub_id, category_id, station_id, created_at
`

type UpsertCategoryStationParams struct {
	HubID      uuid.UUID
	CategoryID uuid.UUID
	StationID  uuid.UUID
}

func (q *Queries) UpsertCategoryStation(ctx context.Context, arg UpsertCategoryStationParams) (CategoryStation, error) {
	row := q.db.QueryRow(ctx, upsertCategoryStation, arg.HubID, arg.CategoryID, arg.StationID)
	var m CategoryStation
	err := row.Scan(&m.ID, &m.HubID, &m.CategoryID, &m.StationID, &m.CreatedAt)
	return m, err
}

const deleteProductStation = `-- name: DeleteProductStation :one
DELETE FROM product_stations
WHERE hub_id = $1 AND product_id = $2
RETURNING id
`

type DeleteProductStationParams struct {
	HubID     uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) DeleteProductStation(ctx context.Context, arg DeleteProductStationParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteProductStation, arg.HubID, arg.ProductID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const deleteCategoryStation = `-- name: DeleteCategoryStation :one
DELETE FROM category_stations
WHERE hub_id = $1 AND category_id = $2
RETURNING id
`

type DeleteCategoryStationParams struct {
	HubID      uuid.UUID
	CategoryID uuid.UUID
}

func (q *Queries) DeleteCategoryStation(ctx context.Context, arg DeleteCategoryStationParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteCategoryStation, arg.HubID, arg.CategoryID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const getStationForProduct = `-- name: GetStationForProduct :one
SELECT s.id, s.hub_id, s.name, s.name_es, s.description, s.color, s.icon,
    s.printer_name, s.sort_order, s.is_active, s.created_at, s.updated_at
FROM product_stations m
JOIN kitchen_stations s ON s.id = m.station_id
WHERE m.hub_id = $1 AND m.product_id = $2 AND s.is_active = true
`

type GetStationForProductParams struct {
	HubID     uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) GetStationForProduct(ctx context.Context, arg GetStationForProductParams) (KitchenStation, error) {
	row := q.db.QueryRow(ctx, getStationForProduct, arg.HubID, arg.ProductID)
	return scanStation(row)
}

const getStationForCategory = `-- name: GetStationForCategory :one
SELECT s.id, s.hub_id, s.name, s.name_es, s.description, s.color, s.icon,
    s.printer_name, s.sort_order, s.is_active, s.created_at, s.updated_at
FROM category_stations m
JOIN kitchen_stations s ON s.id = m.station_id
WHERE m.hub_id = $1 AND m.category_id = $2 AND s.is_active = true
`

type GetStationForCategoryParams struct {
	HubID      uuid.UUID
	CategoryID uuid.UUID
}

func (q *Queries) GetStationForCategory(ctx context.Context, arg GetStationForCategoryParams) (KitchenStation, error) {
	row := q.db.QueryRow(ctx, getStationForCategory, arg.HubID, arg.CategoryID)
	return scanStation(row)
}
