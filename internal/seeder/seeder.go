package seeder

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	conns  *database.Connections
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{conns: conns, logger: logger}
}

type productSeed struct {
	supplier string
	product  entity.Product
}

var (
	suppliers = []entity.Supplier{
		{Name: "Northwind Traders", ContactInfo: "orders@northwind.test"},
		{Name: "Contoso Supply", ContactInfo: "+1-555-0100"},
	}
	products = []productSeed{
		{"Northwind Traders", entity.Product{Name: "Chai", Description: "10 boxes x 20 bags", Price: decimal.RequireFromString("18.00"), Stock: 39}},
		{"Northwind Traders", entity.Product{Name: "Chang", Description: "24 x 12 oz bottles", Price: decimal.RequireFromString("19.00"), Stock: 17}},
		{"Contoso Supply", entity.Product{Name: "Desk Lamp", Description: "LED, adjustable arm", Price: decimal.RequireFromString("34.50"), Stock: 12}},
	}
	customers = []entity.Customer{
		{Name: "Ada Lovelace", ContactInfo: "ada@example.com"},
		{Name: "Grace Hopper", ContactInfo: "grace@example.com"},
	}
)

// Run seeds suppliers, products and customers inside one transaction. Rows
// are matched by name, so running it again inserts nothing.
func (s *Seeder) Run(ctx context.Context) error {
	var inserted int
	err := s.conns.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		supplierIDs := make(map[string]int64, len(suppliers))
		for _, sample := range suppliers {
			supplier := sample
			created, err := insertIfMissing(ctx, tx, &supplier, supplier.Name)
			if err != nil {
				return fmt.Errorf("seed supplier %q: %w", supplier.Name, err)
			}
			if created {
				inserted++
			}
			supplierIDs[supplier.Name] = supplier.ID
		}

		for _, sample := range products {
			product := sample.product
			product.SupplierID = supplierIDs[sample.supplier]
			created, err := insertIfMissing(ctx, tx, &product, product.Name)
			if err != nil {
				return fmt.Errorf("seed product %q: %w", product.Name, err)
			}
			if created {
				inserted++
			}
		}

		for _, sample := range customers {
			customer := sample
			created, err := insertIfMissing(ctx, tx, &customer, customer.Name)
			if err != nil {
				return fmt.Errorf("seed customer %q: %w", customer.Name, err)
			}
			if created {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("seed data applied", zap.Int("inserted", inserted))
	}
	return nil
}

// insertIfMissing loads the row with the given name into model, inserting it
// first when absent. It reports whether an insert happened.
func insertIfMissing(ctx context.Context, db bun.IDB, model any, name string) (bool, error) {
	exists, err := db.NewSelect().Model(model).Where("name = ?", name).Exists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, db.NewSelect().Model(model).Where("name = ?", name).Limit(1).Scan(ctx)
	}
	_, err = db.NewInsert().Model(model).Exec(ctx)
	return err == nil, err
}
