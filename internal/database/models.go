package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Hub struct {
	ID        uuid.UUID
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

type User struct {
	ID             uuid.UUID
	HubID          uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
}

type Category struct {
	ID        uuid.UUID
	HubID     uuid.UUID
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

type Product struct {
	ID         uuid.UUID
	HubID      uuid.UUID
	CategoryID pgtype.UUID
	Name       string
	Price      pgtype.Numeric
	IsActive   bool
	CreatedAt  time.Time
}

type KitchenStation struct {
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
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrdersSettings struct {
	HubID                 uuid.UUID
	AutoPrintTickets      bool
	ShowPrepTime          bool
	AlertThresholdMinutes int32
	UseRounds             bool
	AutoFireOnRound       bool
	DefaultOrderType      string
	SoundOnNewOrder       bool
	UpdatedAt             time.Time
}

type Order struct {
	ID          uuid.UUID
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
	ReadyAt     pgtype.Timestamptz
	ServedAt    pgtype.Timestamptz
	IsDeleted   bool
	DeletedAt   pgtype.Timestamptz
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderItem struct {
	ID          uuid.UUID
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
	StartedAt   pgtype.Timestamptz
	CompletedAt pgtype.Timestamptz
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProductStation struct {
	ID        uuid.UUID
	HubID     uuid.UUID
	ProductID uuid.UUID
	StationID uuid.UUID
	CreatedAt time.Time
}

type CategoryStation struct {
	ID         uuid.UUID
	HubID      uuid.UUID
	CategoryID uuid.UUID
	StationID  uuid.UUID
	CreatedAt  time.Time
}
