package service

import (
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/jackc/pgx/v5/pgtype"
)

// ElapsedMinutes is the whole minutes since the order was fired. Unfired
// orders report zero.
func ElapsedMinutes(o database.Order, now time.Time) int32 {
	return elapsedSince(o.FiredAt, now)
}

// PrepTimeMinutes is the fired-to-ready duration in whole minutes. The
// second return is false until both timestamps are set.
func PrepTimeMinutes(o database.Order) (int32, bool) {
	if !o.FiredAt.Valid || !o.ReadyAt.Valid {
		return 0, false
	}
	return int32(o.ReadyAt.Time.Sub(o.FiredAt.Time) / time.Minute), true
}

// IsDelayed reports whether an open order has been in the kitchen strictly
// longer than the alert threshold. Exactly at the threshold is not delayed.
func IsDelayed(o database.Order, thresholdMinutes int32, now time.Time) bool {
	if !isOpenStatus(o.Status) {
		return false
	}
	return ElapsedMinutes(o, now) > thresholdMinutes
}

// ItemPrepTimeMinutes is the started-to-completed duration for one item.
func ItemPrepTimeMinutes(i database.OrderItem) (int32, bool) {
	if !i.StartedAt.Valid || !i.CompletedAt.Valid {
		return 0, false
	}
	return int32(i.CompletedAt.Time.Sub(i.StartedAt.Time) / time.Minute), true
}

// ItemDisplayName renders the kitchen ticket line: the product name with
// modifiers in parentheses when present.
func ItemDisplayName(i database.OrderItem) string {
	if i.Modifiers == "" {
		return i.ProductName
	}
	return i.ProductName + " (" + i.Modifiers + ")"
}

// CanBeEdited reports whether order contents may still change. Only
// pending and preparing orders accept edits; once the kitchen bumps the
// order its contents are fixed.
func CanBeEdited(o database.Order) bool {
	return isOpenStatus(o.Status)
}

// ItemCount is the number of live (non-deleted) items on an order.
func ItemCount(items []database.OrderItem) int32 {
	var n int32
	for _, i := range items {
		if !i.IsDeleted {
			n++
		}
	}
	return n
}

// PendingItemsCount is the number of live items not yet sent to the
// kitchen.
func PendingItemsCount(items []database.OrderItem) int32 {
	var n int32
	for _, i := range items {
		if !i.IsDeleted && !i.FiredAt.Valid {
			n++
		}
	}
	return n
}

func isOpenStatus(status string) bool {
	return status == enum.OrderStatusPending || status == enum.OrderStatusPreparing
}

func elapsedSince(firedAt pgtype.Timestamptz, now time.Time) int32 {
	if !firedAt.Valid {
		return 0
	}
	return int32(now.Sub(firedAt.Time) / time.Minute)
}
