package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderItemColumns = `id, hub_id, order_id, station_id, product_id,
    product_name, unit_price, quantity, total, modifiers, notes,
    status, seat_number, fired_at, started_at, completed_at,
    is_deleted, created_at, updated_at`

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (
    hub_id, order_id, station_id, product_id, product_name,
    unit_price, quantity, total, modifiers, notes, status, seat_number, fired_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
)
RETURNING ` + orderItemColumns + `
`

type CreateOrderItemParams struct {
	HubID       uuid.UUID
	OrderID     uuid.UUID
	StationID   pgtype.UUID
	ProductID   pgtype.UUID
	ProductName string
	UnitPrice   pgtype.Numeric
	Quantity    int32
	Total       pgtype.Numeric
	Modifiers   string
	Notes       string
	Status      string
	SeatNumber  pgtype.Int4
	FiredAt     pgtype.Timestamptz
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.HubID, arg.OrderID, arg.StationID, arg.ProductID, arg.ProductName,
		arg.UnitPrice, arg.Quantity, arg.Total, arg.Modifiers, arg.Notes,
		arg.Status, arg.SeatNumber, arg.FiredAt,
	)
	return scanOrderItem(row)
}

const getOrderItem = `-- name: GetOrderItem :one
SELECT ` + orderItemColumns + `
FROM order_items
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
`

type GetOrderItemParams struct {
	ID    uuid.UUID
	HubID uuid.UUID
}

func (q *Queries) GetOrderItem(ctx context.Context, arg GetOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, getOrderItem, arg.ID, arg.HubID)
	return scanOrderItem(row)
}

const getOrderItemForUpdate = `-- name: GetOrderItemForUpdate :one
SELECT ` + orderItemColumns + `
FROM order_items
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
FOR UPDATE
`

func (q *Queries) GetOrderItemForUpdate(ctx context.Context, arg GetOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, getOrderItemForUpdate, arg.ID, arg.HubID)
	return scanOrderItem(row)
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT ` + orderItemColumns + `
FROM order_items
WHERE order_id = $1 AND is_deleted = false
ORDER BY created_at
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderItems(rows)
}

const fireOrderItems = `-- name: FireOrderItems :exec
UPDATE order_items
SET status = 'preparing', fired_at = $2, updated_at = now()
WHERE order_id = $1 AND status = 'pending' AND is_deleted = false
`

type FireOrderItemsParams struct {
	OrderID uuid.UUID
	FiredAt pgtype.Timestamptz
}

func (q *Queries) FireOrderItems(ctx context.Context, arg FireOrderItemsParams) error {
	_, err := q.db.Exec(ctx, fireOrderItems, arg.OrderID, arg.FiredAt)
	return err
}

const bumpOrderItems = `-- name: BumpOrderItems :exec
UPDATE order_items
SET status = 'ready', completed_at = $2, updated_at = now()
WHERE order_id = $1 AND status IN ('pending', 'preparing') AND is_deleted = false
`

type BumpOrderItemsParams struct {
	OrderID     uuid.UUID
	CompletedAt pgtype.Timestamptz
}

func (q *Queries) BumpOrderItems(ctx context.Context, arg BumpOrderItemsParams) error {
	_, err := q.db.Exec(ctx, bumpOrderItems, arg.OrderID, arg.CompletedAt)
	return err
}

const recallOrderItems = `-- name: RecallOrderItems :exec
UPDATE order_items
SET status = 'preparing', completed_at = NULL, updated_at = now()
WHERE order_id = $1 AND status = 'ready' AND is_deleted = false
`

func (q *Queries) RecallOrderItems(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, recallOrderItems, orderID)
	return err
}

const cancelOrderItems = `-- name: CancelOrderItems :exec
UPDATE order_items
SET status = 'cancelled', updated_at = now()
WHERE order_id = $1 AND is_deleted = false
`

func (q *Queries) CancelOrderItems(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, cancelOrderItems, orderID)
	return err
}

const startOrderItem = `-- name: StartOrderItem :one
UPDATE order_items
SET status = 'preparing', started_at = $3, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING ` + orderItemColumns + `
`

type StartOrderItemParams struct {
	ID        uuid.UUID
	HubID     uuid.UUID
	StartedAt pgtype.Timestamptz
}

func (q *Queries) StartOrderItem(ctx context.Context, arg StartOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, startOrderItem, arg.ID, arg.HubID, arg.StartedAt)
	return scanOrderItem(row)
}

const markOrderItemReady = `-- name: MarkOrderItemReady :one
UPDATE order_items
SET status = 'ready', completed_at = $3, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING ` + orderItemColumns + `
`

type MarkOrderItemReadyParams struct {
	ID          uuid.UUID
	HubID       uuid.UUID
	CompletedAt pgtype.Timestamptz
}

func (q *Queries) MarkOrderItemReady(ctx context.Context, arg MarkOrderItemReadyParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, markOrderItemReady, arg.ID, arg.HubID, arg.CompletedAt)
	return scanOrderItem(row)
}

const cancelOrderItem = `-- name: CancelOrderItem :one
UPDATE order_items
SET status = 'cancelled', updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING ` + orderItemColumns + `
`

type CancelOrderItemParams struct {
	ID    uuid.UUID
	HubID uuid.UUID
}

func (q *Queries) CancelOrderItem(ctx context.Context, arg CancelOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, cancelOrderItem, arg.ID, arg.HubID)
	return scanOrderItem(row)
}

const updateOrderItemQuantity = `-- name: UpdateOrderItemQuantity :one
UPDATE order_items
SET quantity = $3, total = $4, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING ` + orderItemColumns + `
`

type UpdateOrderItemQuantityParams struct {
	ID       uuid.UUID
	HubID    uuid.UUID
	Quantity int32
	Total    pgtype.Numeric
}

func (q *Queries) UpdateOrderItemQuantity(ctx context.Context, arg UpdateOrderItemQuantityParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, updateOrderItemQuantity, arg.ID, arg.HubID, arg.Quantity, arg.Total)
	return scanOrderItem(row)
}

const softDeleteOrderItem = `-- name: SoftDeleteOrderItem :one
UPDATE order_items
SET is_deleted = true, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING id, order_id
`

type SoftDeleteOrderItemParams struct {
	ID    uuid.UUID
	HubID uuid.UUID
}

type SoftDeleteOrderItemRow struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

func (q *Queries) SoftDeleteOrderItem(ctx context.Context, arg SoftDeleteOrderItemParams) (SoftDeleteOrderItemRow, error) {
	row := q.db.QueryRow(ctx, softDeleteOrderItem, arg.ID, arg.HubID)
	var r SoftDeleteOrderItemRow
	err := row.Scan(&r.ID, &r.OrderID)
	return r, err
}

const countUnfinishedItems = `-- name: CountUnfinishedItems :one
SELECT COUNT(*)
FROM order_items
WHERE order_id = $1 AND is_deleted = false
  AND status NOT IN ('ready', 'served', 'cancelled')
`

func (q *Queries) CountUnfinishedItems(ctx context.Context, orderID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countUnfinishedItems, orderID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listItemsByStation = `-- name: ListItemsByStation :many
SELECT i.id, i.hub_id, i.order_id, i.station_id, i.product_id,
    i.product_name, i.unit_price, i.quantity, i.total, i.modifiers, i.notes,
    i.status, i.seat_number, i.fired_at, i.started_at, i.completed_at,
    i.is_deleted, i.created_at, i.updated_at,
    o.order_number, o.priority, o.status AS order_status,
    o.table_id, o.fired_at AS order_fired_at
FROM order_items i
JOIN orders o ON o.id = i.order_id
WHERE i.hub_id = $1 AND i.station_id = $2
  AND i.status IN ('pending', 'preparing')
  AND i.is_deleted = false AND o.is_deleted = false
ORDER BY CASE o.priority WHEN 'vip' THEN 0 WHEN 'rush' THEN 1 ELSE 2 END,
    o.created_at, i.created_at
`

type ListItemsByStationParams struct {
	HubID     uuid.UUID
	StationID uuid.UUID
}

type ListItemsByStationRow struct {
	OrderItem    OrderItem
	OrderNumber  string
	Priority     string
	OrderStatus  string
	TableID      pgtype.UUID
	OrderFiredAt pgtype.Timestamptz
}

func (q *Queries) ListItemsByStation(ctx context.Context, arg ListItemsByStationParams) ([]ListItemsByStationRow, error) {
	rows, err := q.db.Query(ctx, listItemsByStation, arg.HubID, arg.StationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListItemsByStationRow
	for rows.Next() {
		var r ListItemsByStationRow
		i := &r.OrderItem
		if err := rows.Scan(
			&i.ID, &i.HubID, &i.OrderID, &i.StationID, &i.ProductID,
			&i.ProductName, &i.UnitPrice, &i.Quantity, &i.Total, &i.Modifiers, &i.Notes,
			&i.Status, &i.SeatNumber, &i.FiredAt, &i.StartedAt, &i.CompletedAt,
			&i.IsDeleted, &i.CreatedAt, &i.UpdatedAt,
			&r.OrderNumber, &r.Priority, &r.OrderStatus,
			&r.TableID, &r.OrderFiredAt,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanOrderItem(row rowScanner) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID, &i.HubID, &i.OrderID, &i.StationID, &i.ProductID,
		&i.ProductName, &i.UnitPrice, &i.Quantity, &i.Total, &i.Modifiers, &i.Notes,
		&i.Status, &i.SeatNumber, &i.FiredAt, &i.StartedAt, &i.CompletedAt,
		&i.IsDeleted, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

func scanOrderItems(rows rowsScanner) ([]OrderItem, error) {
	var items []OrderItem
	for rows.Next() {
		i, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
