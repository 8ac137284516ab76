package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getProductForOrder = `-- name: GetProductForOrder :one
SELECT id, hub_id, category_id, name, price
FROM products
WHERE id = $1 AND hub_id = $2 AND is_active = true
`

type GetProductForOrderParams struct {
	ID    uuid.UUID
	HubID uuid.UUID
}

type GetProductForOrderRow struct {
	ID         uuid.UUID
	HubID      uuid.UUID
	CategoryID pgtype.UUID
	Name       string
	Price      pgtype.Numeric
}

func (q *Queries) GetProductForOrder(ctx context.Context, arg GetProductForOrderParams) (GetProductForOrderRow, error) {
	row := q.db.QueryRow(ctx, getProductForOrder, arg.ID, arg.HubID)
	var p GetProductForOrderRow
	err := row.Scan(&p.ID, &p.HubID, &p.CategoryID, &p.Name, &p.Price)
	return p, err
}
