package service

import (
	"context"
	"fmt"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderDetail is an order with its items and derived display fields.
type OrderDetail struct {
	Order             database.Order
	Items             []database.OrderItem
	ItemCount         int32
	PendingItemsCount int32
	ElapsedMinutes    int32
	PrepTimeMins      *int32
	IsDelayed         bool
}

// OrderSummary is a list entry with derived timing fields.
type OrderSummary struct {
	Order          database.Order
	ElapsedMinutes int32
	IsDelayed      bool
}

// StationTicket is one kitchen display line: an item joined with its
// parent order context.
type StationTicket struct {
	Item           database.OrderItem
	OrderNumber    string
	OrderStatus    string
	Priority       string
	TableID        pgtype.UUID
	ElapsedMinutes int32
	IsDelayed      bool
}

// StationLoad pairs a station with its open item count.
type StationLoad struct {
	Station      database.KitchenStation
	PendingCount int64
}

// DailyStats are the aggregate order numbers for one day.
type DailyStats struct {
	Date           string
	TotalOrders    int64
	Completed      int64
	Cancelled      int64
	AvgPrepMinutes *float64
}

// GetOrder looks an order up by id or, failing UUID parsing, by its
// human-readable order number.
func (s *OrderService) GetOrder(ctx context.Context, hubID uuid.UUID, ref string) (*OrderDetail, error) {
	var (
		order database.Order
		err   error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		order, err = s.store.GetOrder(ctx, database.GetOrderParams{ID: id, HubID: hubID})
	} else {
		order, err = s.store.GetOrderByNumber(ctx, database.GetOrderByNumberParams{
			HubID:       hubID,
			OrderNumber: ref,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := s.store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	settings, err := s.settings(ctx, hubID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	detail := &OrderDetail{
		Order:             order,
		Items:             items,
		ItemCount:         ItemCount(items),
		PendingItemsCount: PendingItemsCount(items),
		ElapsedMinutes:    ElapsedMinutes(order, now),
		IsDelayed:         IsDelayed(order, settings.AlertThresholdMinutes, now),
	}
	if prep, ok := PrepTimeMinutes(order); ok {
		detail.PrepTimeMins = &prep
	}
	return detail, nil
}

// ListPendingOrders returns the open (pending/preparing) orders with timing
// fields for the expo view.
func (s *OrderService) ListPendingOrders(ctx context.Context, hubID uuid.UUID) ([]OrderSummary, error) {
	orders, err := s.store.ListPendingOrders(ctx, hubID)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	settings, err := s.settings(ctx, hubID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, OrderSummary{
			Order:          o,
			ElapsedMinutes: ElapsedMinutes(o, now),
			IsDelayed:      IsDelayed(o, settings.AlertThresholdMinutes, now),
		})
	}
	return summaries, nil
}

// ListOrdersByTable returns the open orders for one table, oldest round
// first.
func (s *OrderService) ListOrdersByTable(ctx context.Context, hubID, tableID uuid.UUID) ([]database.Order, error) {
	orders, err := s.store.ListOrdersByTable(ctx, database.ListOrdersByTableParams{
		HubID:   hubID,
		TableID: tableID,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders by table: %w", err)
	}
	return orders, nil
}

// ListItemsByStation returns the open tickets for one station, VIP and rush
// orders first.
func (s *OrderService) ListItemsByStation(ctx context.Context, hubID, stationID uuid.UUID) ([]StationTicket, error) {
	rows, err := s.store.ListItemsByStation(ctx, database.ListItemsByStationParams{
		HubID:     hubID,
		StationID: stationID,
	})
	if err != nil {
		return nil, fmt.Errorf("list items by station: %w", err)
	}
	settings, err := s.settings(ctx, hubID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tickets := make([]StationTicket, 0, len(rows))
	for _, r := range rows {
		elapsed := elapsedSince(r.OrderFiredAt, now)
		delayed := isOpenStatus(r.OrderStatus) && elapsed > settings.AlertThresholdMinutes
		tickets = append(tickets, StationTicket{
			Item:           r.OrderItem,
			OrderNumber:    r.OrderNumber,
			OrderStatus:    r.OrderStatus,
			Priority:       r.Priority,
			TableID:        r.TableID,
			ElapsedMinutes: elapsed,
			IsDelayed:      delayed,
		})
	}
	return tickets, nil
}

// StationSummary returns every active station with its open item count.
func (s *OrderService) StationSummary(ctx context.Context, hubID uuid.UUID) ([]StationLoad, error) {
	stations, err := s.store.ListActiveStations(ctx, hubID)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	counts, err := s.store.StationPendingCounts(ctx, hubID)
	if err != nil {
		return nil, fmt.Errorf("station pending counts: %w", err)
	}

	byStation := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		if c.StationID.Valid {
			byStation[uuid.UUID(c.StationID.Bytes)] = c.PendingCount
		}
	}
	loads := make([]StationLoad, 0, len(stations))
	for _, st := range stations {
		loads = append(loads, StationLoad{Station: st, PendingCount: byStation[st.ID]})
	}
	return loads, nil
}

// DailyStats returns the aggregate counts and average prep time for one day.
func (s *OrderService) DailyStats(ctx context.Context, hubID uuid.UUID, day time.Time) (*DailyStats, error) {
	row, err := s.store.GetDailyOrderStats(ctx, database.GetDailyOrderStatsParams{
		HubID: hubID,
		Day:   pgtype.Date{Time: day, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("get daily order stats: %w", err)
	}

	stats := &DailyStats{
		Date:        day.Format("2006-01-02"),
		TotalOrders: row.TotalOrders,
		Completed:   row.Completed,
		Cancelled:   row.Cancelled,
	}
	if row.AvgPrepSeconds.Valid {
		mins := row.AvgPrepSeconds.Float64 / 60
		stats.AvgPrepMinutes = &mins
	}
	return stats, nil
}

func (s *OrderService) settings(ctx context.Context, hubID uuid.UUID) (database.OrdersSettings, error) {
	if err := s.store.EnsureSettings(ctx, hubID); err != nil {
		return database.OrdersSettings{}, fmt.Errorf("ensure settings: %w", err)
	}
	settings, err := s.store.GetSettings(ctx, hubID)
	if err != nil {
		return database.OrdersSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}
