package entity

import "github.com/uptrace/bun"

// Customer places orders.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID          int64  `bun:",pk,autoincrement"`
	Name        string `bun:"name,notnull"`
	ContactInfo string `bun:"contact_info,notnull"`
}
