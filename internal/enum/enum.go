package enum

// --- Roles (CHECK constrained in DB) ---

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
	RoleKitchen = "kitchen"
)

// --- Fulfillment status (free text in DB; these are the values the
// dashboards use) ---

const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusReady      = "Ready"
	OrderStatusCompleted  = "Completed"
)

// --- Delivery (CHECK constrained in DB) ---

const (
	DeliveryTypePickup  = "Customer Pickup"
	DeliveryTypeService = "Delivery Service"
)

const (
	DeliveryStatusCustomerPending  = "Customer Pending"
	DeliveryStatusCustomerPickedUp = "Customer Picked Up"
	DeliveryStatusDriverPending    = "Driver Pending"
	DeliveryStatusDriverOnTheWay   = "Driver On the Way"
	DeliveryStatusOrderDelivered   = "Order Delivered"
)

// TableTakeaway is the sentinel table number marking a non-dine-in order.
const TableTakeaway = "Takeaway"

// --- Charge settings (singleton row per type) ---

const (
	ChargeTypeService  = "SERVICE"
	ChargeTypeDelivery = "DELIVERY"
)
