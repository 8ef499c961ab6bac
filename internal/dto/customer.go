package dto

import "github.com/Additional-Code/orderdesk/internal/entity"

// CustomerRequest is the payload for creating or replacing a customer.
type CustomerRequest struct {
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info"`
}

// CustomerResponse represents a customer as exposed via transport layers.
type CustomerResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info"`
}

// NewCustomerResponse maps a customer entity.
func NewCustomerResponse(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		ContactInfo: c.ContactInfo,
	}
}

// NewCustomerResponses maps a list, never returning nil.
func NewCustomerResponses(customers []entity.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, NewCustomerResponse(&customers[i]))
	}
	return out
}

// MessageResponse is returned by operations without an entity body.
type MessageResponse struct {
	Message string `json:"message"`
}
