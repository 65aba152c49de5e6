package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusOpen      = "OPEN"
	OrderStatusServed    = "SERVED"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
)

// ── Staff roles (CHECK constrained in DB) ──

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleWaiter  = "WAITER"
	UserRoleCashier = "CASHIER"
	UserRoleKitchen = "KITCHEN"
)

// ── Realtime rooms and events (no DB constraint) ──

const (
	RoomKitchen = "kitchen"
	RoomFloor   = "floor"
)

const (
	EventOrderConfirmed  = "order.confirmed"
	EventOrderItemServed = "order_item.served"
)
