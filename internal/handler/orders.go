package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/middleware"
	"github.com/comanda-pos/api/internal/service"
	"github.com/comanda-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	GetOrder(ctx context.Context, hubID uuid.UUID, ref string) (*service.OrderDetail, error)
	ListPendingOrders(ctx context.Context, hubID uuid.UUID) ([]service.OrderSummary, error)
	ListOrdersByTable(ctx context.Context, hubID, tableID uuid.UUID) ([]database.Order, error)
	DailyStats(ctx context.Context, hubID uuid.UUID, day time.Time) (*service.DailyStats, error)
	FireOrder(ctx context.Context, hubID, orderID uuid.UUID) (*database.Order, error)
	BumpOrder(ctx context.Context, hubID, orderID uuid.UUID) (*database.Order, error)
	RecallOrder(ctx context.Context, hubID, orderID uuid.UUID) (*database.Order, error)
	ServeOrder(ctx context.Context, hubID, orderID uuid.UUID) (*database.Order, error)
	CancelOrder(ctx context.Context, hubID, orderID uuid.UUID, reason string) (*database.Order, error)
	DeleteOrder(ctx context.Context, hubID, orderID uuid.UUID) error
	AddItem(ctx context.Context, req service.AddItemRequest) (*database.OrderItem, error)
	BumpItem(ctx context.Context, hubID, itemID uuid.UUID) (*service.BumpItemResult, error)
	StartItem(ctx context.Context, hubID, itemID uuid.UUID) (*database.OrderItem, error)
	CancelItem(ctx context.Context, hubID, itemID uuid.UUID) (*database.OrderItem, error)
	ModifyItemQuantity(ctx context.Context, hubID, itemID uuid.UUID, quantity int32) (*database.OrderItem, error)
	RemoveItem(ctx context.Context, hubID, itemID uuid.UUID) error
}

// Broadcaster pushes events to connected order displays.
// Satisfied by *ws.Hub; nil disables broadcasting.
type Broadcaster interface {
	BroadcastToHub(hubID uuid.UUID, event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
	hub Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside a hub-scoped subrouter: /hubs/{hid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
	r.Get("/table/{tid}", h.ListByTable)
	r.Get("/{ref}", h.Get)
	r.Post("/{id}/fire", h.Fire)
	r.Post("/{id}/bump", h.Bump)
	r.Post("/{id}/recall", h.Recall)
	r.Post("/{id}/serve", h.Serve)
	r.Post("/{id}/cancel", h.Cancel)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/items", h.AddItem)
	r.Post("/items/{iid}/start", h.StartItem)
	r.Post("/items/{iid}/bump", h.BumpItem)
	r.Post("/items/{iid}/cancel", h.CancelItem)
	r.Patch("/items/{iid}/quantity", h.ModifyItemQuantity)
	r.Delete("/items/{iid}", h.RemoveItem)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType   string                   `json:"order_type"`
	Priority    string                   `json:"priority"`
	TableID     string                   `json:"table_id"`
	CustomerID  string                   `json:"customer_id"`
	RoundNumber int32                    `json:"round_number"`
	Notes       string                   `json:"notes"`
	Tax         string                   `json:"tax"`
	Discount    string                   `json:"discount"`
	AutoRoute   *bool                    `json:"auto_route"`
	Items       []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int32  `json:"quantity"`
	Modifiers   string `json:"modifiers"`
	Notes       string `json:"notes"`
	SeatNumber  int32  `json:"seat_number"`
	StationID   string `json:"station_id"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type modifyQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	HubID          uuid.UUID           `json:"hub_id"`
	OrderNumber    string              `json:"order_number"`
	TableID        *string             `json:"table_id"`
	CustomerID     *string             `json:"customer_id"`
	WaiterID       *string             `json:"waiter_id"`
	OrderType      string              `json:"order_type"`
	Status         string              `json:"status"`
	Priority       string              `json:"priority"`
	RoundNumber    int32               `json:"round_number"`
	Notes          string              `json:"notes"`
	Subtotal       string              `json:"subtotal"`
	Tax            string              `json:"tax"`
	Discount       string              `json:"discount"`
	Total          string              `json:"total"`
	FiredAt        *time.Time          `json:"fired_at"`
	ReadyAt        *time.Time          `json:"ready_at"`
	ServedAt       *time.Time          `json:"served_at"`
	CanBeEdited    bool                `json:"can_be_edited"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Items          []orderItemResponse `json:"items,omitempty"`
	ItemCount      *int32              `json:"item_count,omitempty"`
	PendingItems   *int32              `json:"pending_items_count,omitempty"`
	ElapsedMinutes *int32              `json:"elapsed_minutes,omitempty"`
	PrepTimeMins   *int32              `json:"prep_time_minutes,omitempty"`
	IsDelayed      *bool               `json:"is_delayed,omitempty"`
}

type orderItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"order_id"`
	StationID   *string    `json:"station_id"`
	ProductID   *string    `json:"product_id"`
	ProductName string     `json:"product_name"`
	DisplayName string     `json:"display_name"`
	UnitPrice   string     `json:"unit_price"`
	Quantity    int32      `json:"quantity"`
	Total       string     `json:"total"`
	Modifiers   string     `json:"modifiers"`
	Notes       string     `json:"notes"`
	Status      string     `json:"status"`
	SeatNumber  *int32     `json:"seat_number"`
	FiredAt     *time.Time `json:"fired_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

type bumpItemResponse struct {
	Item       orderItemResponse `json:"item"`
	Order      orderResponse     `json:"order"`
	OrderReady bool              `json:"order_ready"`
}

type dailyStatsResponse struct {
	Date           string   `json:"date"`
	TotalOrders    int64    `json:"total_orders"`
	Completed      int64    `json:"completed"`
	Cancelled      int64    `json:"cancelled"`
	AvgPrepMinutes *float64 `json:"avg_prep_minutes"`
}

// orderEventPayload is the WebSocket payload for order lifecycle events.
type orderEventPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
}

// --- Handlers ---

// Create handles POST /hubs/{hid}/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	// Routing defaults to on; clients opt out explicitly.
	autoRoute := true
	if req.AutoRoute != nil {
		autoRoute = *req.AutoRoute
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateOrderItemRequest{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Modifiers:   item.Modifiers,
			Notes:       item.Notes,
			SeatNumber:  item.SeatNumber,
			StationID:   item.StationID,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		HubID:       hubID,
		WaiterID:    claims.UserID,
		OrderType:   req.OrderType,
		Priority:    req.Priority,
		TableID:     req.TableID,
		CustomerID:  req.CustomerID,
		RoundNumber: req.RoundNumber,
		Notes:       req.Notes,
		Tax:         req.Tax,
		Discount:    req.Discount,
		AutoRoute:   autoRoute,
		Items:       svcItems,
	})
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcast(hubID, "order.created", result.Order)

	resp := dbOrderToResponse(result.Order)
	itemCount := service.ItemCount(result.Items)
	pendingItems := service.PendingItemsCount(result.Items)
	resp.ItemCount = &itemCount
	resp.PendingItems = &pendingItems
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, item := range result.Items {
		resp.Items[i] = dbOrderItemToResponse(item)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /hubs/{hid}/orders. Returns open orders for the expo view.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	summaries, err := h.svc.ListPendingOrders(r.Context(), hubID)
	if err != nil {
		log.Printf("ERROR: list pending orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(summaries))
	for i, s := range summaries {
		o := dbOrderToResponse(s.Order)
		elapsed := s.ElapsedMinutes
		delayed := s.IsDelayed
		o.ElapsedMinutes = &elapsed
		o.IsDelayed = &delayed
		resp[i] = o
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp})
}

// ListByTable handles GET /hubs/{hid}/orders/table/{tid}.
func (h *OrderHandler) ListByTable(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	tableID, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	orders, err := h.svc.ListOrdersByTable(r.Context(), hubID, tableID)
	if err != nil {
		log.Printf("ERROR: list orders by table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp})
}

// Stats handles GET /hubs/{hid}/orders/stats?date=YYYY-MM-DD.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	day := time.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
			return
		}
		day = t
	}

	stats, err := h.svc.DailyStats(r.Context(), hubID, day)
	if err != nil {
		log.Printf("ERROR: daily stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dailyStatsResponse{
		Date:           stats.Date,
		TotalOrders:    stats.TotalOrders,
		Completed:      stats.Completed,
		Cancelled:      stats.Cancelled,
		AvgPrepMinutes: stats.AvgPrepMinutes,
	})
}

// Get handles GET /hubs/{hid}/orders/{ref}. The ref may be an order ID or a
// human-readable order number like 20250830-0042.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	detail, err := h.svc.GetOrder(r.Context(), hubID, chi.URLParam(r, "ref"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(detail.Order)
	itemCount := detail.ItemCount
	pendingItems := detail.PendingItemsCount
	elapsed := detail.ElapsedMinutes
	delayed := detail.IsDelayed
	resp.ItemCount = &itemCount
	resp.PendingItems = &pendingItems
	resp.ElapsedMinutes = &elapsed
	resp.IsDelayed = &delayed
	resp.PrepTimeMins = detail.PrepTimeMins
	resp.Items = make([]orderItemResponse, len(detail.Items))
	for i, item := range detail.Items {
		resp.Items[i] = dbOrderItemToResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Fire handles POST /hubs/{hid}/orders/{id}/fire.
func (h *OrderHandler) Fire(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, "fire order", h.svc.FireOrder)
}

// Bump handles POST /hubs/{hid}/orders/{id}/bump.
func (h *OrderHandler) Bump(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, "bump order", h.svc.BumpOrder)
}

// Recall handles POST /hubs/{hid}/orders/{id}/recall.
func (h *OrderHandler) Recall(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, "recall order", h.svc.RecallOrder)
}

// Serve handles POST /hubs/{hid}/orders/{id}/serve.
func (h *OrderHandler) Serve(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, "serve order", h.svc.ServeOrder)
}

// orderAction runs a single-order workflow transition and broadcasts the
// resulting state.
func (h *OrderHandler) orderAction(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context, hubID, orderID uuid.UUID) (*database.Order, error)) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := fn(r.Context(), hubID, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: %s: %v", name, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcast(hubID, "order.updated", *order)
	writeJSON(w, http.StatusOK, dbOrderToResponse(*order))
}

// Cancel handles POST /hubs/{hid}/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	// Body is optional; a missing body means no reason.
	var req cancelOrderRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	order, err := h.svc.CancelOrder(r.Context(), hubID, orderID, req.Reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		if errors.Is(err, service.ErrOrderNotCancellable) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order cannot be cancelled"})
			return
		}
		log.Printf("ERROR: cancel order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcast(hubID, "order.updated", *order)
	writeJSON(w, http.StatusOK, dbOrderToResponse(*order))
}

// Delete handles DELETE /hubs/{hid}/orders/{id}. Soft-deletes the order.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), hubID, orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: delete order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /hubs/{hid}/orders/{id}/items.
func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req createOrderItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.svc.AddItem(r.Context(), service.AddItemRequest{
		HubID:     hubID,
		OrderID:   orderID,
		AutoRoute: true,
		Item: service.CreateOrderItemRequest{
			ProductID:   req.ProductID,
			ProductName: req.ProductName,
			UnitPrice:   req.UnitPrice,
			Quantity:    req.Quantity,
			Modifiers:   req.Modifiers,
			Notes:       req.Notes,
			SeatNumber:  req.SeatNumber,
			StationID:   req.StationID,
		},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: add order item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, dbOrderItemToResponse(*item))
}

// BumpItem handles POST /hubs/{hid}/orders/items/{iid}/bump.
func (h *OrderHandler) BumpItem(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "iid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	result, err := h.svc.BumpItem(r.Context(), hubID, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: bump order item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if result.OrderReady {
		h.broadcast(hubID, "order.updated", result.Order)
	}
	writeJSON(w, http.StatusOK, bumpItemResponse{
		Item:       dbOrderItemToResponse(result.Item),
		Order:      dbOrderToResponse(result.Order),
		OrderReady: result.OrderReady,
	})
}

// StartItem handles POST /hubs/{hid}/orders/items/{iid}/start.
func (h *OrderHandler) StartItem(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, "start item", h.svc.StartItem)
}

// CancelItem handles POST /hubs/{hid}/orders/items/{iid}/cancel.
func (h *OrderHandler) CancelItem(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, "cancel item", h.svc.CancelItem)
}

func (h *OrderHandler) itemAction(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context, hubID, itemID uuid.UUID) (*database.OrderItem, error)) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "iid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	item, err := fn(r.Context(), hubID, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: %s: %v", name, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbOrderItemToResponse(*item))
}

// ModifyItemQuantity handles PATCH /hubs/{hid}/orders/items/{iid}/quantity.
func (h *OrderHandler) ModifyItemQuantity(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "iid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req modifyQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.svc.ModifyItemQuantity(r.Context(), hubID, itemID, req.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: modify item quantity: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbOrderItemToResponse(*item))
}

// RemoveItem handles DELETE /hubs/{hid}/orders/items/{iid}.
func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	hubID, ok := hubIDFromRequest(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "iid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	if err := h.svc.RemoveItem(r.Context(), hubID, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: remove order item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (h *OrderHandler) broadcast(hubID uuid.UUID, eventType string, order database.Order) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(orderEventPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
	})
	if err != nil {
		return
	}
	h.hub.BroadcastToHub(hubID, ws.Event{Type: eventType, Payload: payload})
}

func hubIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	hubID, err := uuid.Parse(chi.URLParam(r, "hid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hub ID"})
		return uuid.Nil, false
	}
	return hubID, true
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidPriority) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrProductNotFound) ||
		errors.Is(err, service.ErrMissingProductName) ||
		errors.Is(err, service.ErrInvalidProductID) ||
		errors.Is(err, service.ErrInvalidStationID) ||
		errors.Is(err, service.ErrInvalidTableID) ||
		errors.Is(err, service.ErrInvalidCustomerID) ||
		errors.Is(err, service.ErrInvalidUnitPrice) ||
		errors.Is(err, service.ErrInvalidTax) ||
		errors.Is(err, service.ErrInvalidDiscount)
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

// dbOrderToResponse converts a database.Order to an orderResponse.
func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		HubID:       o.HubID,
		OrderNumber: o.OrderNumber,
		OrderType:   o.OrderType,
		Status:      o.Status,
		Priority:    o.Priority,
		RoundNumber: o.RoundNumber,
		Notes:       o.Notes,
		Subtotal:    numericToString(o.Subtotal),
		Tax:         numericToString(o.Tax),
		Discount:    numericToString(o.Discount),
		Total:       numericToString(o.Total),
		CanBeEdited: service.CanBeEdited(o),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}

	if o.TableID.Valid {
		s := uuid.UUID(o.TableID.Bytes).String()
		resp.TableID = &s
	}
	if o.CustomerID.Valid {
		s := uuid.UUID(o.CustomerID.Bytes).String()
		resp.CustomerID = &s
	}
	if o.WaiterID.Valid {
		s := uuid.UUID(o.WaiterID.Bytes).String()
		resp.WaiterID = &s
	}
	if o.FiredAt.Valid {
		resp.FiredAt = &o.FiredAt.Time
	}
	if o.ReadyAt.Valid {
		resp.ReadyAt = &o.ReadyAt.Time
	}
	if o.ServedAt.Valid {
		resp.ServedAt = &o.ServedAt.Time
	}

	return resp
}

// dbOrderItemToResponse converts a database.OrderItem to an orderItemResponse.
func dbOrderItemToResponse(item database.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ID:          item.ID,
		OrderID:     item.OrderID,
		ProductName: item.ProductName,
		DisplayName: service.ItemDisplayName(item),
		UnitPrice:   numericToString(item.UnitPrice),
		Quantity:    item.Quantity,
		Total:       numericToString(item.Total),
		Modifiers:   item.Modifiers,
		Notes:       item.Notes,
		Status:      item.Status,
		CreatedAt:   item.CreatedAt,
	}

	if item.StationID.Valid {
		s := uuid.UUID(item.StationID.Bytes).String()
		resp.StationID = &s
	}
	if item.ProductID.Valid {
		s := uuid.UUID(item.ProductID.Bytes).String()
		resp.ProductID = &s
	}
	if item.SeatNumber.Valid {
		n := item.SeatNumber.Int32
		resp.SeatNumber = &n
	}
	if item.FiredAt.Valid {
		resp.FiredAt = &item.FiredAt.Time
	}
	if item.StartedAt.Valid {
		resp.StartedAt = &item.StartedAt.Time
	}
	if item.CompletedAt.Valid {
		resp.CompletedAt = &item.CompletedAt.Time
	}

	return resp
}
