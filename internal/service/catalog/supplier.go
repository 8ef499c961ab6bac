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

// ListSuppliers returns all suppliers.
func (s *Service) ListSuppliers(ctx context.Context) ([]entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListSuppliers")
	defer span.End()

	suppliers, err := s.catalog.ListSuppliers(ctx)
	if err != nil {
		return nil, s.internal(span, "failed to list suppliers", err)
	}
	return suppliers, nil
}

// GetSupplier returns a supplier by id.
func (s *Service) GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetSupplier", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	supplier, err := s.catalog.GetSupplier(ctx, id)
	if errors.Is(err, catalogrepo.ErrSupplierNotFound) {
		return nil, errorbank.NotFound(fmt.Sprintf("Supplier %d not found", id))
	}
	if err != nil {
		return nil, s.internal(span, "failed to load supplier", err)
	}
	return supplier, nil
}

// CreateSupplier validates and persists a supplier.
func (s *Service) CreateSupplier(ctx context.Context, req dto.SupplierRequest) (*entity.Supplier, error) {
	if err := validateSupplier(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateSupplier")
	defer span.End()

	supplier := &entity.Supplier{Name: req.Name, ContactInfo: req.ContactInfo}
	if err := s.catalog.CreateSupplier(ctx, supplier); err != nil {
		return nil, s.internal(span, "failed to create supplier", err)
	}
	return supplier, nil
}

// UpdateSupplier replaces name and contact info of a supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id int64, req dto.SupplierRequest) (*entity.Supplier, error) {
	if err := validateSupplier(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "CatalogService.UpdateSupplier", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	var supplier *entity.Supplier
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		catalog := s.catalog.WithTx(tx)
		existing, err := catalog.GetSupplier(ctx, id)
		if errors.Is(err, catalogrepo.ErrSupplierNotFound) {
			return errorbank.NotFound(fmt.Sprintf("Supplier %d not found", id))
		}
		if err != nil {
			return s.internal(span, "failed to load supplier", err)
		}

		existing.Name = req.Name
		existing.ContactInfo = req.ContactInfo
		if err := catalog.UpdateSupplier(ctx, existing); err != nil {
			return s.internal(span, "failed to update supplier", err)
		}
		supplier = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

// DeleteSupplier removes a supplier that provides no products.
func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.DeleteSupplier", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	return s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		catalog := s.catalog.WithTx(tx)
		exists, err := catalog.SupplierExists(ctx, id)
		if err != nil {
			return s.internal(span, "failed to load supplier", err)
		}
		if !exists {
			return errorbank.NotFound(fmt.Sprintf("Supplier %d not found", id))
		}

		hasProducts, err := catalog.SupplierHasProducts(ctx, id)
		if err != nil {
			return s.internal(span, "failed to check supplier products", err)
		}
		if hasProducts {
			s.rejected(ctx, "supplier")
			return errorbank.Dependency(fmt.Sprintf("Supplier %d has associated data in products table and cannot be deleted", id))
		}

		if err := catalog.DeleteSupplier(ctx, id); err != nil {
			return s.internal(span, "failed to delete supplier", err)
		}
		return nil
	})
}

// SupplierProducts lists the products a supplier provides.
func (s *Service) SupplierProducts(ctx context.Context, id int64) ([]entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.SupplierProducts", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	exists, err := s.catalog.SupplierExists(ctx, id)
	if err != nil {
		return nil, s.internal(span, "failed to load supplier", err)
	}
	if !exists {
		return nil, errorbank.NotFound(fmt.Sprintf("Supplier %d not present", id))
	}

	products, err := s.catalog.ListProductsBySupplier(ctx, id)
	if err != nil {
		return nil, s.internal(span, "failed to list supplier products", err)
	}
	return products, nil
}

func validateSupplier(req dto.SupplierRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.ContactInfo) == "" {
		return errorbank.BadRequest("name and contact_info are required")
	}
	return nil
}
