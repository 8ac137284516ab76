package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    hub_id, order_number, table_id, customer_id, waiter_id,
    order_type, status, priority, round_number, notes,
    subtotal, tax, discount, total, fired_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
)
RETURNING id, hub_id, order_number, table_id, customer_id, waiter_id,
    order_type, status, priority, round_number, notes,
    subtotal, tax, discount, total,
    fired_at, ready_at, served_at, is_deleted, deleted_at, created_at, updated_at
`

type CreateOrderParams struct {
	HubID       uuid.UUID
	OrderNumber string
	TableID     pgtype.UUID
	CustomerID  pgtype.UUID
	WaiterID    pgtype.UUID
	OrderType   string
	Status      string
	Priority    string
	RoundNumber int32
	Notes       string
	Subtotal    pgtype.Numeric
	Tax         pgtype.Numeric
	Discount    pgtype.Numeric
	Total       pgtype.Numeric
	FiredAt     pgtype.Timestamptz
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.HubID, arg.OrderNumber, arg.TableID, arg.CustomerID, arg.WaiterID,
		arg.OrderType, arg.Status, arg.Priority, arg.RoundNumber, arg.Notes,
		arg.Subtotal, arg.Tax, arg.Discount, arg.Total, arg.FiredAt,
	)
	return scanOrder(row)
}

const orderColumns = `id, hub_id, order_number, table_id, customer_id, waiter_id,
    order_type, status, priority, round_number, notes,
    subtotal, tax, discount, total,
    fired_at, ready_at, served_at, is_deleted, deleted_at, created_at, updated_at`

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
`

type GetOrderParams struct {
	ID    uuid.UUID
	HubID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, arg.ID, arg.HubID)
	return scanOrder(row)
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
FOR UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderForUpdate, arg.ID, arg.HubID)
	return scanOrder(row)
}

const getOrderByNumber = `-- name: GetOrderByNumber :one
SELECT ` + orderColumns + `
FROM orders
WHERE hub_id = $1 AND order_number = $2 AND is_deleted = false
`

type GetOrderByNumberParams struct {
	HubID       uuid.UUID
	OrderNumber string
}

func (q *Queries) GetOrderByNumber(ctx context.Context, arg GetOrderByNumberParams) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderByNumber, arg.HubID, arg.OrderNumber)
	return scanOrder(row)
}

const getNextOrderNumber = `-- name: GetNextOrderNumber :one
SELECT COALESCE(MAX(CAST(SPLIT_PART(order_number, '-', 2) AS INTEGER)), 0) + 1
FROM orders
WHERE hub_id = $1 AND order_number LIKE $2 || '-%'
`

type GetNextOrderNumberParams struct {
	HubID  uuid.UUID
	Prefix string
}

func (q *Queries) GetNextOrderNumber(ctx context.Context, arg GetNextOrderNumberParams) (int32, error) {
	row := q.db.QueryRow(ctx, getNextOrderNumber, arg.HubID, arg.Prefix)
	var next int32
	err := row.Scan(&next)
	return next, err
}

const listPendingOrders = `-- name: ListPendingOrders :many
SELECT ` + orderColumns + `
FROM orders
WHERE hub_id = $1 AND status IN ('pending', 'preparing') AND is_deleted = false
ORDER BY created_at
`

func (q *Queries) ListPendingOrders(ctx context.Context, hubID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listPendingOrders, hubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

const listOrdersByTable = `-- name: ListOrdersByTable :many
SELECT ` + orderColumns + `
FROM orders
WHERE hub_id = $1 AND table_id = $2
  AND status IN ('pending', 'preparing', 'ready')
  AND is_deleted = false
ORDER BY round_number, created_at
`

type ListOrdersByTableParams struct {
	HubID   uuid.UUID
	TableID uuid.UUID
}

func (q *Queries) ListOrdersByTable(ctx context.Context, arg ListOrdersByTableParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByTable, arg.HubID, arg.TableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

const fireOrder = `-- name: FireOrder :one
UPDATE orders
SET status = 'preparing', fired_at = $3, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING ` + orderColumns + `
`

type FireOrderParams struct {
	ID      uuid.UUID
	HubID   uuid.UUID
	FiredAt pgtype.Timestamptz
}

func (q *Queries) FireOrder(ctx context.Context, arg FireOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, fireOrder, arg.ID, arg.HubID, arg.FiredAt)
	return scanOrder(row)
}

const markOrderReady = `-- name: MarkOrderReady :one
UPDATE orders
SET status = 'ready', ready_at = $3, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING ` + orderColumns + `
`

type MarkOrderReadyParams struct {
	ID      uuid.UUID
	HubID   uuid.UUID
	ReadyAt pgtype.Timestamptz
}

func (q *Queries) MarkOrderReady(ctx context.Context, arg MarkOrderReadyParams) (Order, error) {
	row := q.db.QueryRow(ctx, markOrderReady, arg.ID, arg.HubID, arg.ReadyAt)
	return scanOrder(row)
}

const markOrderServed = `-- name: MarkOrderServed :one
UPDATE orders
SET status = 'served', served_at = $3, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING ` + orderColumns + `
`

type MarkOrderServedParams struct {
	ID       uuid.UUID
	HubID    uuid.UUID
	ServedAt pgtype.Timestamptz
}

func (q *Queries) MarkOrderServed(ctx context.Context, arg MarkOrderServedParams) (Order, error) {
	row := q.db.QueryRow(ctx, markOrderServed, arg.ID, arg.HubID, arg.ServedAt)
	return scanOrder(row)
}

const cancelOrder = `-- name: CancelOrder :one
UPDATE orders
SET status = 'cancelled', notes = $3, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING ` + orderColumns + `
`

type CancelOrderParams struct {
	ID    uuid.UUID
	HubID uuid.UUID
	Notes string
}

func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.HubID, arg.Notes)
	return scanOrder(row)
}

const recallOrder = `-- name: RecallOrder :one
UPDATE orders
SET status = 'preparing', ready_at = NULL, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND status = 'ready' AND is_deleted = false
RETURNING ` + orderColumns + `
`

type RecallOrderParams struct {
	ID    uuid.UUID
	HubID uuid.UUID
}

func (q *Queries) RecallOrder(ctx context.Context, arg RecallOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, recallOrder, arg.ID, arg.HubID)
	return scanOrder(row)
}

const updateOrderTotals = `-- name: UpdateOrderTotals :one
UPDATE orders
SET subtotal = $3, total = $4, updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING ` + orderColumns + `
`

type UpdateOrderTotalsParams struct {
	ID       uuid.UUID
	HubID    uuid.UUID
	Subtotal pgtype.Numeric
	Total    pgtype.Numeric
}

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderTotals, arg.ID, arg.HubID, arg.Subtotal, arg.Total)
	return scanOrder(row)
}

const softDeleteOrder = `-- name: SoftDeleteOrder :one
UPDATE orders
SET is_deleted = true, deleted_at = now(), updated_at = now()
WHERE id = $1 AND hub_id = $2 AND is_deleted = false
RETURNING id
`

type SoftDeleteOrderParams struct {
	ID    uuid.UUID
	HubID uuid.UUID
}

func (q *Queries) SoftDeleteOrder(ctx context.Context, arg SoftDeleteOrderParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, softDeleteOrder, arg.ID, arg.HubID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const getDailyOrderStats = `-- name: GetDailyOrderStats :one
SELECT
    COUNT(*) AS total_orders,
    COUNT(*) FILTER (WHERE status = 'served') AS completed,
    COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
    CAST(AVG(EXTRACT(EPOCH FROM (ready_at - fired_at)))
        FILTER (WHERE fired_at IS NOT NULL AND ready_at IS NOT NULL) AS FLOAT8) AS avg_prep_seconds
FROM orders
WHERE hub_id = $1 AND created_at::date = $2 AND is_deleted = false
`

type GetDailyOrderStatsParams struct {
	HubID uuid.UUID
	Day   pgtype.Date
}

type GetDailyOrderStatsRow struct {
	TotalOrders    int64
	Completed      int64
	Cancelled      int64
	AvgPrepSeconds pgtype.Float8
}

func (q *Queries) GetDailyOrderStats(ctx context.Context, arg GetDailyOrderStatsParams) (GetDailyOrderStatsRow, error) {
	row := q.db.QueryRow(ctx, getDailyOrderStats, arg.HubID, arg.Day)
	var r GetDailyOrderStatsRow
	err := row.Scan(&r.TotalOrders, &r.Completed, &r.Cancelled, &r.AvgPrepSeconds)
	return r, err
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.HubID, &o.OrderNumber, &o.TableID, &o.CustomerID, &o.WaiterID,
		&o.OrderType, &o.Status, &o.Priority, &o.RoundNumber, &o.Notes,
		&o.Subtotal, &o.Tax, &o.Discount, &o.Total,
		&o.FiredAt, &o.ReadyAt, &o.ServedAt, &o.IsDeleted, &o.DeletedAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

type rowsScanner interface {
	Next() bool
	Err() error
	Scan(dest ...interface{}) error
}

func scanOrders(rows rowsScanner) ([]Order, error) {
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
