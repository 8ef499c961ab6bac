package customer

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

var repoTracer = otel.Tracer("github.com/Additional-Code/orderdesk/repository/customer")

// ErrNotFound is returned when a customer is missing.
var ErrNotFound = errors.New("customer not found")

// Repository encapsulates read/write access for customers.
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

// Create persists a new customer using the write connection.
func (r *Repository) Create(ctx context.Context, customer *entity.Customer) error {
	if customer == nil {
		return errors.New("nil customer")
	}
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.Create")
	defer span.End()

	_, err := r.writer.NewInsert().Model(customer).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a customer by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.GetByID", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	customer := new(entity.Customer)
	err := r.reader.NewSelect().Model(customer).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return customer, nil
}

// Exists reports whether a customer with id is stored.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.Exists", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	ok, err := r.reader.NewSelect().Model((*entity.Customer)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exists failed")
	}
	return ok, err
}

// List returns every customer in insertion order.
func (r *Repository) List(ctx context.Context) ([]entity.Customer, error) {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.List")
	defer span.End()

	customers := make([]entity.Customer, 0)
	if err := r.reader.NewSelect().Model(&customers).Order("id ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return customers, nil
}

// Update overwrites every column of an existing customer.
func (r *Repository) Update(ctx context.Context, customer *entity.Customer) error {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.Update", trace.WithAttributes(attribute.Int64("customer.id", customer.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().Model(customer).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// Delete removes a customer row. Callers enforce the orders guard first.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.Delete", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	_, err := r.writer.NewDelete().Model((*entity.Customer)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}
