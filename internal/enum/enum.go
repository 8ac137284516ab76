package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

const (
	ItemStatusPending   = "pending"
	ItemStatusPreparing = "preparing"
	ItemStatusReady     = "ready"
	ItemStatusServed    = "served"
	ItemStatusCancelled = "cancelled"
)

// ── Group B: Borderline (CHECK constrained in DB) ──

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

const (
	PriorityNormal = "normal"
	PriorityRush   = "rush"
	PriorityVIP    = "vip"
)

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleWaiter  = "WAITER"
	UserRoleKitchen = "KITCHEN"
)

// ── Group C: Configurable defaults (no DB constraint) ──

const (
	DefaultAlertThresholdMinutes = 15
	DefaultStationColor          = "#F97316"
	DefaultStationIcon           = "flame-outline"
)
