package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems          = errors.New("items are required")
	ErrInvalidOrderType    = errors.New("invalid order_type")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrProductNotFound     = errors.New("product not found in hub")
	ErrMissingProductName  = errors.New("product_id or product_name is required")
	ErrInvalidProductID    = errors.New("invalid product_id")
	ErrInvalidStationID    = errors.New("invalid station_id")
	ErrInvalidTableID      = errors.New("invalid table_id")
	ErrInvalidCustomerID   = errors.New("invalid customer_id")
	ErrInvalidUnitPrice    = errors.New("invalid unit_price")
	ErrInvalidTax          = errors.New("invalid tax")
	ErrInvalidDiscount     = errors.New("invalid discount")
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order workflows.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	EnsureSettings(ctx context.Context, hubID uuid.UUID) error
	GetSettings(ctx context.Context, hubID uuid.UUID) (database.OrdersSettings, error)
	GetNextOrderNumber(ctx context.Context, arg database.GetNextOrderNumberParams) (int32, error)
	GetProductForOrder(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error)
	GetStationForProduct(ctx context.Context, arg database.GetStationForProductParams) (database.KitchenStation, error)
	GetStationForCategory(ctx context.Context, arg database.GetStationForCategoryParams) (database.KitchenStation, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)

	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	GetOrderByNumber(ctx context.Context, arg database.GetOrderByNumberParams) (database.Order, error)
	ListPendingOrders(ctx context.Context, hubID uuid.UUID) ([]database.Order, error)
	ListOrdersByTable(ctx context.Context, arg database.ListOrdersByTableParams) ([]database.Order, error)
	FireOrder(ctx context.Context, arg database.FireOrderParams) (database.Order, error)
	MarkOrderReady(ctx context.Context, arg database.MarkOrderReadyParams) (database.Order, error)
	MarkOrderServed(ctx context.Context, arg database.MarkOrderServedParams) (database.Order, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
	RecallOrder(ctx context.Context, arg database.RecallOrderParams) (database.Order, error)
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error)
	SoftDeleteOrder(ctx context.Context, arg database.SoftDeleteOrderParams) (uuid.UUID, error)
	GetDailyOrderStats(ctx context.Context, arg database.GetDailyOrderStatsParams) (database.GetDailyOrderStatsRow, error)

	GetOrderItem(ctx context.Context, arg database.GetOrderItemParams) (database.OrderItem, error)
	GetOrderItemForUpdate(ctx context.Context, arg database.GetOrderItemParams) (database.OrderItem, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	FireOrderItems(ctx context.Context, arg database.FireOrderItemsParams) error
	BumpOrderItems(ctx context.Context, arg database.BumpOrderItemsParams) error
	RecallOrderItems(ctx context.Context, orderID uuid.UUID) error
	CancelOrderItems(ctx context.Context, orderID uuid.UUID) error
	StartOrderItem(ctx context.Context, arg database.StartOrderItemParams) (database.OrderItem, error)
	MarkOrderItemReady(ctx context.Context, arg database.MarkOrderItemReadyParams) (database.OrderItem, error)
	CancelOrderItem(ctx context.Context, arg database.CancelOrderItemParams) (database.OrderItem, error)
	UpdateOrderItemQuantity(ctx context.Context, arg database.UpdateOrderItemQuantityParams) (database.OrderItem, error)
	SoftDeleteOrderItem(ctx context.Context, arg database.SoftDeleteOrderItemParams) (database.SoftDeleteOrderItemRow, error)
	CountUnfinishedItems(ctx context.Context, orderID uuid.UUID) (int64, error)
	ListItemsByStation(ctx context.Context, arg database.ListItemsByStationParams) ([]database.ListItemsByStationRow, error)

	ListActiveStations(ctx context.Context, hubID uuid.UUID) ([]database.KitchenStation, error)
	StationPendingCounts(ctx context.Context, hubID uuid.UUID) ([]database.StationPendingCountsRow, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	HubID       uuid.UUID
	WaiterID    uuid.UUID
	OrderType   string
	Priority    string
	TableID     string
	CustomerID  string
	RoundNumber int32
	Notes       string
	Tax         string
	Discount    string
	AutoRoute   bool
	Items       []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single item in the order. Either ProductID or
// ProductName must be set; when a product is referenced its name and price
// are snapshotted onto the item unless overridden here.
type CreateOrderItemRequest struct {
	ProductID   string
	ProductName string
	UnitPrice   string
	Quantity    int32
	Modifiers   string
	Notes       string
	SeatNumber  int32
	StationID   string
}

// CreateOrderResult is the full created order with items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	store    OrderStore
	newStore NewOrderStore
	now      func() time.Time
}

// NewOrderService creates a new OrderService. The store is used for reads
// outside transactions; newStore builds tx-scoped stores for workflows.
func NewOrderService(pool TxBeginner, store OrderStore, newStore NewOrderStore) *OrderService {
	return &OrderService{
		pool:     pool,
		store:    store,
		newStore: newStore,
		now:      time.Now,
	}
}

func isValidOrderType(t string) bool {
	switch t {
	case enum.OrderTypeDineIn, enum.OrderTypeTakeaway, enum.OrderTypeDelivery:
		return true
	}
	return false
}

func isValidPriority(p string) bool {
	switch p {
	case enum.PriorityNormal, enum.PriorityRush, enum.PriorityVIP:
		return true
	}
	return false
}

// CreateOrder validates the request, generates a daily sequential order
// number, routes items to stations and persists everything in a single
// transaction. Creation is retried on order number collisions.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if req.OrderType != "" && !isValidOrderType(req.OrderType) {
		return nil, ErrInvalidOrderType
	}
	if req.Priority != "" && !isValidPriority(req.Priority) {
		return nil, ErrInvalidPriority
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		if item.ProductID == "" && item.ProductName == "" {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrMissingProductName)
		}
	}

	var result *CreateOrderResult
	var err error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err = s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if !isOrderNumberConflict(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("order number conflict after %d attempts: %w", maxOrderNumberRetries, err)
}

func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_hub_id_order_number_key"
	}
	return false
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if err := store.EnsureSettings(ctx, req.HubID); err != nil {
		return nil, fmt.Errorf("ensure settings: %w", err)
	}
	settings, err := store.GetSettings(ctx, req.HubID)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = settings.DefaultOrderType
	}
	priority := req.Priority
	if priority == "" {
		priority = enum.PriorityNormal
	}
	round := req.RoundNumber
	if round <= 0 || !settings.UseRounds {
		round = 1
	}

	// --- Generate order number: YYYYMMDD-NNNN per hub per day ---
	now := s.now()
	prefix := now.Format("20060102")
	nextNum, err := store.GetNextOrderNumber(ctx, database.GetNextOrderNumberParams{
		HubID:  req.HubID,
		Prefix: prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("%s-%04d", prefix, nextNum)

	// --- Process items: validate, snapshot product data, route ---
	subtotal := decimal.Zero
	itemParams := make([]database.CreateOrderItemParams, 0, len(req.Items))
	for i, item := range req.Items {
		params, lineTotal, err := s.buildItemParams(ctx, store, req.HubID, item, req.AutoRoute)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		subtotal = subtotal.Add(lineTotal)
		itemParams = append(itemParams, params)
	}

	tax := decimal.Zero
	if req.Tax != "" {
		if tax, err = decimal.NewFromString(req.Tax); err != nil {
			return nil, ErrInvalidTax
		}
	}
	discount := decimal.Zero
	if req.Discount != "" {
		if discount, err = decimal.NewFromString(req.Discount); err != nil {
			return nil, ErrInvalidDiscount
		}
	}
	total := subtotal.Sub(discount).Add(tax)

	tableID, err := parseOptionalUUID(req.TableID)
	if err != nil {
		return nil, ErrInvalidTableID
	}
	customerID, err := parseOptionalUUID(req.CustomerID)
	if err != nil {
		return nil, ErrInvalidCustomerID
	}
	waiterID := pgtype.UUID{}
	if req.WaiterID != uuid.Nil {
		waiterID = pgtype.UUID{Bytes: req.WaiterID, Valid: true}
	}

	// With auto-fire the order and its items go straight to preparing.
	status := enum.OrderStatusPending
	itemStatus := enum.ItemStatusPending
	firedAt := pgtype.Timestamptz{}
	if settings.AutoFireOnRound {
		status = enum.OrderStatusPreparing
		itemStatus = enum.ItemStatusPreparing
		firedAt = pgtype.Timestamptz{Time: now, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		HubID:       req.HubID,
		OrderNumber: orderNumber,
		TableID:     tableID,
		CustomerID:  customerID,
		WaiterID:    waiterID,
		OrderType:   orderType,
		Status:      status,
		Priority:    priority,
		RoundNumber: round,
		Notes:       req.Notes,
		Subtotal:    decimalToNumeric(subtotal),
		Tax:         decimalToNumeric(tax),
		Discount:    decimalToNumeric(discount),
		Total:       decimalToNumeric(total),
		FiredAt:     firedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(itemParams))
	for i := range itemParams {
		itemParams[i].OrderID = order.ID
		itemParams[i].Status = itemStatus
		itemParams[i].FiredAt = firedAt
		created, err := store.CreateOrderItem(ctx, itemParams[i])
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, created)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &CreateOrderResult{Order: order, Items: items}, nil
}

// buildItemParams resolves product snapshot data and station routing for a
// single item. OrderID, Status and FiredAt are filled in by the caller.
func (s *OrderService) buildItemParams(ctx context.Context, store OrderStore, hubID uuid.UUID, item CreateOrderItemRequest, autoRoute bool) (database.CreateOrderItemParams, decimal.Decimal, error) {
	var (
		params     database.CreateOrderItemParams
		name       string
		unitPrice  decimal.Decimal
		productID  pgtype.UUID
		categoryID pgtype.UUID
	)

	if item.ProductID != "" {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return params, decimal.Zero, ErrInvalidProductID
		}
		product, err := store.GetProductForOrder(ctx, database.GetProductForOrderParams{
			ID:    pid,
			HubID: hubID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return params, decimal.Zero, ErrProductNotFound
			}
			return params, decimal.Zero, fmt.Errorf("get product: %w", err)
		}
		productID = pgtype.UUID{Bytes: product.ID, Valid: true}
		categoryID = product.CategoryID
		name = product.Name
		unitPrice = numericToDecimal(product.Price)
	}
	if item.ProductName != "" {
		name = item.ProductName
	}
	if item.UnitPrice != "" {
		p, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return params, decimal.Zero, ErrInvalidUnitPrice
		}
		unitPrice = p
	}

	stationID := pgtype.UUID{}
	if item.StationID != "" {
		sid, err := uuid.Parse(item.StationID)
		if err != nil {
			return params, decimal.Zero, ErrInvalidStationID
		}
		stationID = pgtype.UUID{Bytes: sid, Valid: true}
	} else if autoRoute && productID.Valid {
		sid, err := s.routeItem(ctx, store, hubID, uuid.UUID(productID.Bytes), categoryID)
		if err != nil {
			return params, decimal.Zero, err
		}
		stationID = sid
	}

	seat := pgtype.Int4{}
	if item.SeatNumber > 0 {
		seat = pgtype.Int4{Int32: item.SeatNumber, Valid: true}
	}

	lineTotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
	params = database.CreateOrderItemParams{
		HubID:       hubID,
		StationID:   stationID,
		ProductID:   productID,
		ProductName: name,
		UnitPrice:   decimalToNumeric(unitPrice),
		Quantity:    item.Quantity,
		Total:       decimalToNumeric(lineTotal),
		Modifiers:   item.Modifiers,
		Notes:       item.Notes,
		SeatNumber:  seat,
	}
	return params, lineTotal, nil
}

// routeItem resolves the station for a product inside the creation
// transaction. Product mapping wins over category mapping; an unrouted
// product yields a null station.
func (s *OrderService) routeItem(ctx context.Context, store OrderStore, hubID, productID uuid.UUID, categoryID pgtype.UUID) (pgtype.UUID, error) {
	station, err := store.GetStationForProduct(ctx, database.GetStationForProductParams{
		HubID:     hubID,
		ProductID: productID,
	})
	if err == nil {
		return pgtype.UUID{Bytes: station.ID, Valid: true}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return pgtype.UUID{}, fmt.Errorf("get station for product: %w", err)
	}
	if !categoryID.Valid {
		return pgtype.UUID{}, nil
	}
	station, err = store.GetStationForCategory(ctx, database.GetStationForCategoryParams{
		HubID:      hubID,
		CategoryID: uuid.UUID(categoryID.Bytes),
	})
	if err == nil {
		return pgtype.UUID{Bytes: station.ID, Valid: true}, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return pgtype.UUID{}, nil
	}
	return pgtype.UUID{}, fmt.Errorf("get station for category: %w", err)
}

// FireOrder sends the order to the kitchen: the order and all its pending
// items move to preparing with a shared fired_at timestamp.
func (s *OrderService) FireOrder(ctx context.Context, hubID, orderID uuid.UUID) (*database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if _, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: orderID, HubID: hubID}); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	firedAt := pgtype.Timestamptz{Time: s.now(), Valid: true}
	order, err := store.FireOrder(ctx, database.FireOrderParams{ID: orderID, HubID: hubID, FiredAt: firedAt})
	if err != nil {
		return nil, fmt.Errorf("fire order: %w", err)
	}
	if err := store.FireOrderItems(ctx, database.FireOrderItemsParams{OrderID: orderID, FiredAt: firedAt}); err != nil {
		return nil, fmt.Errorf("fire order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &order, nil
}

// BumpOrder marks every unfinished item ready and the order itself ready.
func (s *OrderService) BumpOrder(ctx context.Context, hubID, orderID uuid.UUID) (*database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if _, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: orderID, HubID: hubID}); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	readyAt := pgtype.Timestamptz{Time: s.now(), Valid: true}
	if err := store.BumpOrderItems(ctx, database.BumpOrderItemsParams{OrderID: orderID, CompletedAt: readyAt}); err != nil {
		return nil, fmt.Errorf("bump order items: %w", err)
	}
	order, err := store.MarkOrderReady(ctx, database.MarkOrderReadyParams{ID: orderID, HubID: hubID, ReadyAt: readyAt})
	if err != nil {
		return nil, fmt.Errorf("mark order ready: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &order, nil
}

// RecallOrder pulls a ready order back to preparing, clearing ready
// timestamps on the order and its ready items. Orders in any other status
// are returned unchanged.
func (s *OrderService) RecallOrder(ctx context.Context, hubID, orderID uuid.UUID) (*database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	current, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: orderID, HubID: hubID})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	order, err := store.RecallOrder(ctx, database.RecallOrderParams{ID: orderID, HubID: hubID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Not in ready: recall is a no-op.
			if err := tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("commit tx: %w", err)
			}
			return &current, nil
		}
		return nil, fmt.Errorf("recall order: %w", err)
	}
	if err := store.RecallOrderItems(ctx, orderID); err != nil {
		return nil, fmt.Errorf("recall order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &order, nil
}

// ServeOrder marks the order as served.
func (s *OrderService) ServeOrder(ctx context.Context, hubID, orderID uuid.UUID) (*database.Order, error) {
	order, err := s.store.MarkOrderServed(ctx, database.MarkOrderServedParams{
		ID:       orderID,
		HubID:    hubID,
		ServedAt: pgtype.Timestamptz{Time: s.now(), Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("mark order served: %w", err)
	}
	return &order, nil
}

// CancelOrder cancels the order and all its items. Paid and already
// cancelled orders are refused. The reason, when given, is appended to the
// order notes.
func (s *OrderService) CancelOrder(ctx context.Context, hubID, orderID uuid.UUID, reason string) (*database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	current, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: orderID, HubID: hubID})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if current.Status == enum.OrderStatusPaid || current.Status == enum.OrderStatusCancelled {
		return nil, ErrOrderNotCancellable
	}

	notes := current.Notes
	if reason != "" {
		notes = strings.TrimSpace(notes + "\nCancelled: " + reason)
	}
	order, err := store.CancelOrder(ctx, database.CancelOrderParams{ID: orderID, HubID: hubID, Notes: notes})
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if err := store.CancelOrderItems(ctx, orderID); err != nil {
		return nil, fmt.Errorf("cancel order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &order, nil
}

// DeleteOrder soft-deletes the order.
func (s *OrderService) DeleteOrder(ctx context.Context, hubID, orderID uuid.UUID) error {
	_, err := s.store.SoftDeleteOrder(ctx, database.SoftDeleteOrderParams{ID: orderID, HubID: hubID})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// BumpItemResult is the outcome of bumping a single item.
type BumpItemResult struct {
	Item       database.OrderItem
	Order      database.Order
	OrderReady bool
}

// BumpItem marks one item ready. When it was the last unfinished item the
// parent order is marked ready in the same transaction.
func (s *OrderService) BumpItem(ctx context.Context, hubID, itemID uuid.UUID) (*BumpItemResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	item, err := store.GetOrderItemForUpdate(ctx, database.GetOrderItemParams{ID: itemID, HubID: hubID})
	if err != nil {
		return nil, fmt.Errorf("get order item: %w", err)
	}
	order, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: item.OrderID, HubID: hubID})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	readyAt := pgtype.Timestamptz{Time: s.now(), Valid: true}
	updated, err := store.MarkOrderItemReady(ctx, database.MarkOrderItemReadyParams{
		ID:          itemID,
		HubID:       hubID,
		CompletedAt: readyAt,
	})
	if err != nil {
		return nil, fmt.Errorf("mark item ready: %w", err)
	}

	result := &BumpItemResult{Item: updated, Order: order}
	unfinished, err := store.CountUnfinishedItems(ctx, item.OrderID)
	if err != nil {
		return nil, fmt.Errorf("count unfinished items: %w", err)
	}
	if unfinished == 0 {
		order, err = store.MarkOrderReady(ctx, database.MarkOrderReadyParams{
			ID:      item.OrderID,
			HubID:   hubID,
			ReadyAt: readyAt,
		})
		if err != nil {
			return nil, fmt.Errorf("mark order ready: %w", err)
		}
		result.Order = order
		result.OrderReady = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

// StartItem marks an item as being prepared.
func (s *OrderService) StartItem(ctx context.Context, hubID, itemID uuid.UUID) (*database.OrderItem, error) {
	item, err := s.store.StartOrderItem(ctx, database.StartOrderItemParams{
		ID:        itemID,
		HubID:     hubID,
		StartedAt: pgtype.Timestamptz{Time: s.now(), Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("start item: %w", err)
	}
	return &item, nil
}

// CancelItem cancels a single item without touching the parent order. The
// cancelled line keeps counting toward the subtotal until it is removed.
func (s *OrderService) CancelItem(ctx context.Context, hubID, itemID uuid.UUID) (*database.OrderItem, error) {
	item, err := s.store.CancelOrderItem(ctx, database.CancelOrderItemParams{ID: itemID, HubID: hubID})
	if err != nil {
		return nil, fmt.Errorf("cancel item: %w", err)
	}
	return &item, nil
}

// ModifyItemQuantity changes an item's quantity, clamped to a minimum of 1,
// and recomputes the item line total and the order totals.
func (s *OrderService) ModifyItemQuantity(ctx context.Context, hubID, itemID uuid.UUID, quantity int32) (*database.OrderItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	item, err := store.GetOrderItemForUpdate(ctx, database.GetOrderItemParams{ID: itemID, HubID: hubID})
	if err != nil {
		return nil, fmt.Errorf("get order item: %w", err)
	}

	total := numericToDecimal(item.UnitPrice).Mul(decimal.NewFromInt32(quantity))
	updated, err := store.UpdateOrderItemQuantity(ctx, database.UpdateOrderItemQuantityParams{
		ID:       itemID,
		HubID:    hubID,
		Quantity: quantity,
		Total:    decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("update item quantity: %w", err)
	}
	if _, err := s.recalcTotals(ctx, store, hubID, item.OrderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &updated, nil
}

// AddItemRequest adds one item to an existing order.
type AddItemRequest struct {
	HubID     uuid.UUID
	OrderID   uuid.UUID
	AutoRoute bool
	Item      CreateOrderItemRequest
}

// AddItem appends an item to an existing order and recomputes the totals.
// The new item starts pending regardless of the order status.
func (s *OrderService) AddItem(ctx context.Context, req AddItemRequest) (*database.OrderItem, error) {
	if req.Item.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Item.ProductID == "" && req.Item.ProductName == "" {
		return nil, ErrMissingProductName
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	order, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: req.OrderID, HubID: req.HubID})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	params, _, err := s.buildItemParams(ctx, store, req.HubID, req.Item, req.AutoRoute)
	if err != nil {
		return nil, err
	}
	params.OrderID = order.ID
	params.Status = enum.ItemStatusPending
	item, err := store.CreateOrderItem(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create order item: %w", err)
	}
	if _, err := s.recalcTotals(ctx, store, req.HubID, order.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &item, nil
}

// RemoveItem soft-deletes an item and recomputes the order totals.
func (s *OrderService) RemoveItem(ctx context.Context, hubID, itemID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	deleted, err := store.SoftDeleteOrderItem(ctx, database.SoftDeleteOrderItemParams{ID: itemID, HubID: hubID})
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	if _, err := s.recalcTotals(ctx, store, hubID, deleted.OrderID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// recalcTotals recomputes subtotal and total from the live (non-deleted)
// item lines. Cancelled lines still count until they are removed.
func (s *OrderService) recalcTotals(ctx context.Context, store OrderStore, hubID, orderID uuid.UUID) (database.Order, error) {
	order, err := store.GetOrderForUpdate(ctx, database.GetOrderParams{ID: orderID, HubID: hubID})
	if err != nil {
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	items, err := store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("list order items: %w", err)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(numericToDecimal(item.Total))
	}
	total := subtotal.Sub(numericToDecimal(order.Discount)).Add(numericToDecimal(order.Tax))

	updated, err := store.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:       orderID,
		HubID:    hubID,
		Subtotal: decimalToNumeric(subtotal),
		Total:    decimalToNumeric(total),
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("update order totals: %w", err)
	}
	return updated, nil
}

func parseOptionalUUID(s string) (pgtype.UUID, error) {
	if s == "" {
		return pgtype.UUID{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
