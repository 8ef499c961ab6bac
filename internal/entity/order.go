package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Order statuses accepted by the status update operation.
const (
	OrderStatusPending   = "Pending"
	OrderStatusFulfilled = "Fulfilled"
	OrderStatusCancelled = "Cancelled"
)

// ShipmentStatusShipped is applied when a shipment is created without a status.
const ShipmentStatusShipped = "Shipped"

// Order represents a customer purchase stored in the relational database.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID         int64     `bun:",pk,autoincrement"`
	CustomerID int64     `bun:"customer_id,notnull"`
	OrderDate  time.Time `bun:"order_date,notnull"`
	Status     string    `bun:"status,notnull"`
}

// OrderItem is a line of an order. Price is captured when the item is
// added and does not follow later product price changes.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID        int64           `bun:",pk,autoincrement"`
	OrderID   int64           `bun:"order_id,notnull"`
	ProductID int64           `bun:"product_id,notnull"`
	Quantity  int             `bun:"quantity,notnull"`
	Price     decimal.Decimal `bun:"price,notnull"`

	Product *Product `bun:"rel:belongs-to,join:product_id=id"`
}

// Shipment tracks delivery of an order.
type Shipment struct {
	bun.BaseModel `bun:"table:shipments,alias:sh"`

	ID           int64     `bun:",pk,autoincrement"`
	OrderID      int64     `bun:"order_id,notnull"`
	ShipmentDate time.Time `bun:"shipment_date,nullzero"`
	DeliveryDate time.Time `bun:"delivery_date,nullzero"`
	Status       string    `bun:"status,notnull"`
}

// IsValidOrderStatus reports whether status is one of the whitelisted order statuses.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	default:
		return false
	}
}
