package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/orderdesk/repository/catalog")

var (
	// ErrSupplierNotFound is returned when a supplier is missing.
	ErrSupplierNotFound = errors.New("supplier not found")
	// ErrProductNotFound is returned when a product is missing.
	ErrProductNotFound = errors.New("product not found")
)

// Repository encapsulates read/write access for suppliers and products.
type Repository struct {
	writer bun.IDB
	reader bun.IDB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// WithTx returns a copy of the repository that reads and writes through tx.
func (r *Repository) WithTx(tx bun.IDB) *Repository {
	return &Repository{writer: tx, reader: tx}
}

// CreateSupplier persists a new supplier.
func (r *Repository) CreateSupplier(ctx context.Context, supplier *entity.Supplier) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateSupplier")
	defer span.End()

	_, err := r.writer.NewInsert().Model(supplier).Exec(ctx)
	return recordErr(span, err, "insert failed")
}

// GetSupplier fetches a supplier by primary key.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetSupplier", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	supplier := new(entity.Supplier)
	err := r.reader.NewSelect().Model(supplier).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrSupplierNotFound
	}
	if err != nil {
		return nil, recordErr(span, err, "select failed")
	}
	return supplier, nil
}

// SupplierExists reports whether a supplier with id is stored.
func (r *Repository) SupplierExists(ctx context.Context, id int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.SupplierExists", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	ok, err := r.reader.NewSelect().Model((*entity.Supplier)(nil)).Where("id = ?", id).Exists(ctx)
	return ok, recordErr(span, err, "exists failed")
}

// ListSuppliers returns every supplier in insertion order.
func (r *Repository) ListSuppliers(ctx context.Context) ([]entity.Supplier, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListSuppliers")
	defer span.End()

	suppliers := make([]entity.Supplier, 0)
	if err := r.reader.NewSelect().Model(&suppliers).Order("id ASC").Scan(ctx); err != nil {
		return nil, recordErr(span, err, "select failed")
	}
	return suppliers, nil
}

// UpdateSupplier overwrites an existing supplier.
func (r *Repository) UpdateSupplier(ctx context.Context, supplier *entity.Supplier) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.UpdateSupplier", trace.WithAttributes(attribute.Int64("supplier.id", supplier.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().Model(supplier).WherePK().Exec(ctx)
	return recordErr(span, err, "update failed")
}

// DeleteSupplier removes a supplier row. Callers enforce the products guard first.
func (r *Repository) DeleteSupplier(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.DeleteSupplier", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	_, err := r.writer.NewDelete().Model((*entity.Supplier)(nil)).Where("id = ?", id).Exec(ctx)
	return recordErr(span, err, "delete failed")
}

// SupplierHasProducts reports whether the supplier owns at least one product.
func (r *Repository) SupplierHasProducts(ctx context.Context, supplierID int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.SupplierHasProducts", trace.WithAttributes(attribute.Int64("supplier.id", supplierID)))
	defer span.End()

	ok, err := r.reader.NewSelect().Model((*entity.Product)(nil)).Where("supplier_id = ?", supplierID).Exists(ctx)
	return ok, recordErr(span, err, "exists failed")
}

// CreateProduct persists a new product.
func (r *Repository) CreateProduct(ctx context.Context, product *entity.Product) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateProduct", trace.WithAttributes(attribute.Int64("supplier.id", product.SupplierID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(product).Exec(ctx)
	return recordErr(span, err, "insert failed")
}

// GetProduct fetches a product with its supplier joined.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product := new(entity.Product)
	err := r.reader.NewSelect().Model(product).Relation("Supplier").Where("p.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, recordErr(span, err, "select failed")
	}
	return product, nil
}

// ListProducts returns every product with its supplier joined.
func (r *Repository) ListProducts(ctx context.Context) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListProducts")
	defer span.End()

	products := make([]entity.Product, 0)
	if err := r.reader.NewSelect().Model(&products).Relation("Supplier").Order("p.id ASC").Scan(ctx); err != nil {
		return nil, recordErr(span, err, "select failed")
	}
	return products, nil
}

// ListProductsBySupplier returns the products owned by a supplier.
func (r *Repository) ListProductsBySupplier(ctx context.Context, supplierID int64) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListProductsBySupplier", trace.WithAttributes(attribute.Int64("supplier.id", supplierID)))
	defer span.End()

	products := make([]entity.Product, 0)
	err := r.reader.NewSelect().Model(&products).Where("supplier_id = ?", supplierID).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, recordErr(span, err, "select failed")
	}
	return products, nil
}

// UpdateProduct overwrites an existing product.
func (r *Repository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", product.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().Model(product).WherePK().Exec(ctx)
	return recordErr(span, err, "update failed")
}

// DeleteProduct removes a product row. Callers enforce the order items guard first.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.DeleteProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	_, err := r.writer.NewDelete().Model((*entity.Product)(nil)).Where("id = ?", id).Exec(ctx)
	return recordErr(span, err, "delete failed")
}

func recordErr(span trace.Span, err error, msg string) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
	}
	return err
}
