package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// OrderRequest is the payload for creating or replacing an order.
// OrderDate stays a string so the service can report parse failures itself.
type OrderRequest struct {
	CustomerID *int64  `json:"customer_id"`
	OrderDate  string  `json:"order_date"`
	Status     *string `json:"status"`
}

// OrderStatusRequest is the payload of the status update operation. Status
// is decoded loosely so that numbers, arrays or objects reach the whitelist
// check instead of failing to bind.
type OrderStatusRequest struct {
	Status any `json:"status"`
}

// StatusValue returns the status when it was sent as a JSON string and ""
// otherwise.
func (r OrderStatusRequest) StatusValue() string {
	s, _ := r.Status.(string)
	return s
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	OrderDate  Timestamp `json:"order_date"`
	Status     string    `json:"status"`
}

// OrderItemRequest is the payload for adding an item to an order.
type OrderItemRequest struct {
	ProductID *int64           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

// OrderItemResponse represents an order line with its product embedded.
type OrderItemResponse struct {
	ID        int64            `json:"id"`
	OrderID   int64            `json:"order_id"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Product   *ProductResponse `json:"product"`
}

// ShipmentRequest is the payload for creating or replacing a shipment.
type ShipmentRequest struct {
	ShipmentDate string `json:"shipment_date"`
	DeliveryDate string `json:"delivery_date"`
	Status       string `json:"status"`
}

// ShipmentResponse represents a shipment.
type ShipmentResponse struct {
	ID           int64     `json:"id"`
	OrderID      int64     `json:"order_id"`
	ShipmentDate Timestamp `json:"shipment_date"`
	DeliveryDate Timestamp `json:"delivery_date"`
	Status       string    `json:"status"`
}

// NewOrderResponse maps an order entity.
func NewOrderResponse(o *entity.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		OrderDate:  Timestamp(o.OrderDate),
		Status:     o.Status,
	}
}

// NewOrderResponses maps a list, never returning nil.
func NewOrderResponses(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}

// NewOrderItemResponse maps an order item; Product is null when the
// referenced product does not exist.
func NewOrderItemResponse(item *entity.OrderItem) OrderItemResponse {
	resp := OrderItemResponse{
		ID:        item.ID,
		OrderID:   item.OrderID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Price:     item.Price,
	}
	if item.Product != nil && item.Product.ID != 0 {
		product := NewProductResponse(item.Product)
		resp.Product = &product
	}
	return resp
}

// NewOrderItemResponses maps a list, never returning nil.
func NewOrderItemResponses(items []entity.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewOrderItemResponse(&items[i]))
	}
	return out
}

// NewShipmentResponse maps a shipment entity.
func NewShipmentResponse(s *entity.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:           s.ID,
		OrderID:      s.OrderID,
		ShipmentDate: Timestamp(s.ShipmentDate),
		DeliveryDate: Timestamp(s.DeliveryDate),
		Status:       s.Status,
	}
}

// NewShipmentResponses maps a list, never returning nil.
func NewShipmentResponses(shipments []entity.Shipment) []ShipmentResponse {
	out := make([]ShipmentResponse, 0, len(shipments))
	for i := range shipments {
		out = append(out, NewShipmentResponse(&shipments[i]))
	}
	return out
}
