package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// SupplierRequest is the payload for creating or replacing a supplier.
type SupplierRequest struct {
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info"`
}

// SupplierResponse represents a supplier.
type SupplierResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info"`
}

// ProductRequest is the payload for creating or replacing a product.
type ProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	SupplierID  *int64           `json:"supplier_id"`
}

// ProductResponse represents a product with its supplier embedded when loaded.
type ProductResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Stock       int               `json:"stock"`
	SupplierID  int64             `json:"supplier_id"`
	Supplier    *SupplierResponse `json:"supplier,omitempty"`
}

// NewSupplierResponse maps a supplier entity.
func NewSupplierResponse(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          s.ID,
		Name:        s.Name,
		ContactInfo: s.ContactInfo,
	}
}

// NewSupplierResponses maps a list, never returning nil.
func NewSupplierResponses(suppliers []entity.Supplier) []SupplierResponse {
	out := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, NewSupplierResponse(&suppliers[i]))
	}
	return out
}

// NewProductResponse maps a product entity.
func NewProductResponse(p *entity.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		SupplierID:  p.SupplierID,
	}
	if p.Supplier != nil {
		supplier := NewSupplierResponse(p.Supplier)
		resp.Supplier = &supplier
	}
	return resp
}

// NewProductResponses maps a list, never returning nil.
func NewProductResponses(products []entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}
