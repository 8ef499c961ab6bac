package entity

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Supplier provides products to the catalog.
type Supplier struct {
	bun.BaseModel `bun:"table:suppliers,alias:s"`

	ID          int64  `bun:",pk,autoincrement"`
	Name        string `bun:"name,notnull"`
	ContactInfo string `bun:"contact_info,notnull"`
}

// Product is a sellable catalog entry owned by exactly one supplier.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64           `bun:",pk,autoincrement"`
	Name        string          `bun:"name,notnull"`
	Description string          `bun:"description"`
	Price       decimal.Decimal `bun:"price,notnull"`
	Stock       int             `bun:"stock,notnull"`
	SupplierID  int64           `bun:"supplier_id,notnull"`

	Supplier *Supplier `bun:"rel:belongs-to,join:supplier_id=id"`
}
