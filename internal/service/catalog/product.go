package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
	catalogrepo "github.com/Additional-Code/orderdesk/internal/repository/catalog"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// ListProducts returns every product with its supplier.
func (s *Service) ListProducts(ctx context.Context) ([]entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, s.internal(span, "failed to list products", err)
	}
	return products, nil
}

// GetProduct returns a product with its supplier.
func (s *Service) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := s.catalog.GetProduct(ctx, id)
	if errors.Is(err, catalogrepo.ErrProductNotFound) {
		return nil, errorbank.NotFound(fmt.Sprintf("Product %d not found", id))
	}
	if err != nil {
		return nil, s.internal(span, "failed to load product", err)
	}
	return product, nil
}

// CreateProduct persists a product for an existing supplier. Stock defaults to 0.
func (s *Service) CreateProduct(ctx context.Context, req dto.ProductRequest) (*entity.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateProduct", trace.WithAttributes(attribute.Int64("supplier.id", *req.SupplierID)))
	defer span.End()

	var product *entity.Product
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		catalog := s.catalog.WithTx(tx)
		supplier, err := s.supplierPresent(ctx, span, catalog, *req.SupplierID)
		if err != nil {
			return err
		}

		product = &entity.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       entity.StoredPrice(*req.Price),
			SupplierID:  supplier.ID,
		}
		if req.Stock != nil {
			product.Stock = *req.Stock
		}
		if err := catalog.CreateProduct(ctx, product); err != nil {
			return s.internal(span, "failed to create product", err)
		}
		product.Supplier = supplier
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct replaces a product. The supplier is checked before the
// product itself; stock is kept when omitted.
func (s *Service) UpdateProduct(ctx context.Context, id int64, req dto.ProductRequest) (*entity.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "CatalogService.UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	var product *entity.Product
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		catalog := s.catalog.WithTx(tx)
		supplier, err := s.supplierPresent(ctx, span, catalog, *req.SupplierID)
		if err != nil {
			return err
		}

		existing, err := catalog.GetProduct(ctx, id)
		if errors.Is(err, catalogrepo.ErrProductNotFound) {
			return errorbank.NotFound(fmt.Sprintf("Product %d not found", id))
		}
		if err != nil {
			return s.internal(span, "failed to load product", err)
		}

		existing.Name = req.Name
		existing.Description = req.Description
		existing.Price = entity.StoredPrice(*req.Price)
		existing.SupplierID = supplier.ID
		if req.Stock != nil {
			existing.Stock = *req.Stock
		}
		if err := catalog.UpdateProduct(ctx, existing); err != nil {
			return s.internal(span, "failed to update product", err)
		}
		existing.Supplier = supplier
		product = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product that no order item references.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.DeleteProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	return s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		catalog := s.catalog.WithTx(tx)
		if _, err := catalog.GetProduct(ctx, id); err != nil {
			if errors.Is(err, catalogrepo.ErrProductNotFound) {
				return errorbank.NotFound(fmt.Sprintf("Product %d not found", id))
			}
			return s.internal(span, "failed to load product", err)
		}

		referenced, err := s.orders.WithTx(tx).ProductHasItems(ctx, id)
		if err != nil {
			return s.internal(span, "failed to check product order items", err)
		}
		if referenced {
			s.rejected(ctx, "product")
			return errorbank.Dependency(fmt.Sprintf("Product %d has associated data in order items table and cannot be deleted", id))
		}

		if err := catalog.DeleteProduct(ctx, id); err != nil {
			return s.internal(span, "failed to delete product", err)
		}
		return nil
	})
}

func (s *Service) supplierPresent(ctx context.Context, span trace.Span, catalog *catalogrepo.Repository, id int64) (*entity.Supplier, error) {
	supplier, err := catalog.GetSupplier(ctx, id)
	if errors.Is(err, catalogrepo.ErrSupplierNotFound) {
		return nil, errorbank.NotFound(fmt.Sprintf("Supplier %d not present", id))
	}
	if err != nil {
		return nil, s.internal(span, "failed to load supplier", err)
	}
	return supplier, nil
}

func validateProduct(req dto.ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" || req.Price == nil || req.SupplierID == nil {
		return errorbank.BadRequest("name, price and supplier_id are required")
	}
	if req.Price.IsNegative() {
		return errorbank.BadRequest("price must not be negative")
	}
	if entity.StoredPrice(*req.Price).GreaterThan(entity.MaxPrice) {
		return errorbank.BadRequest("price must not exceed " + entity.MaxPrice.StringFixed(entity.PriceScale))
	}
	if req.Stock != nil && *req.Stock < 0 {
		return errorbank.BadRequest("stock must not be negative")
	}
	return nil
}
