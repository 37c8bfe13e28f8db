package models

// OrderStatus represents the payment lifecycle of an order.
type OrderStatus string

// Possible order statuses.
const (
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusPartial  OrderStatus = "PARTIAL"
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusFailed   OrderStatus = "FAILED"
	OrderStatusRefunded OrderStatus = "REFUNDED"
	OrderStatusDisputed OrderStatus = "DISPUTED"
)

// Order is the monetary record behind an enrollment. All amounts are whole
// rupees. Orders are historical and never deleted.
type Order struct {
	ID           string `json:"id"`
	EnrollmentID string `json:"enrollment_id"`

	BaseAmount     int64 `json:"base_amount"`
	Discount       int64 `json:"discount"`
	CouponDiscount int64 `json:"coupon_discount"`
	Payable        int64 `json:"payable"`
	Paid           int64 `json:"paid"`
	Pending        int64 `json:"pending"`
	GatewayFee     int64 `json:"gateway_fee"`
	NetSettlement  int64 `json:"net_settlement"`

	Status    OrderStatus `json:"status"`
	CreatedAt int64       `json:"created_at"`
}

// OrderEvent is a timeline entry recorded against an order. Events are
// stored per order id and append-only.
type OrderEvent struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Type    string `json:"type"`
	Message string `json:"message"`
	At      int64  `json:"at"`
}

// OrderFilter provides filters for listing orders.
type OrderFilter struct {
	Search    string
	Status    OrderStatus
	From      int64
	To        int64
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
