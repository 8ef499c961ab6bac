package order

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

var repoTracer = otel.Tracer("github.com/Additional-Code/orderdesk/repository/order")

var (
	// ErrNotFound is returned when an order is missing.
	ErrNotFound = errors.New("order not found")
	// ErrItemNotFound is returned when an order item is missing.
	ErrItemNotFound = errors.New("order item not found")
	// ErrShipmentNotFound is returned when a shipment is missing.
	ErrShipmentNotFound = errors.New("shipment not found")
)

// Repository encapsulates read/write access for orders and the rows they own.
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

// Create persists a new order using the write connection.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.Int64("customer.id", order.CustomerID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(order).Exec(ctx)
	if err != nil {
		fail(span, err, "insert failed")
	}
	return err
}

// GetByID fetches an order by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		fail(span, err, "select failed")
		return nil, err
	}
	return order, nil
}

// Exists reports whether an order with id is stored.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, "OrderRepository.Exists", (*entity.Order)(nil), "id = ?", id)
}

// List returns every order in insertion order.
func (r *Repository) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	orders := make([]entity.Order, 0)
	if err := r.reader.NewSelect().Model(&orders).Order("id ASC").Scan(ctx); err != nil {
		fail(span, err, "select failed")
		return nil, err
	}
	return orders, nil
}

// ListByCustomer returns the orders owned by a customer.
func (r *Repository) ListByCustomer(ctx context.Context, customerID int64) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByCustomer", trace.WithAttributes(attribute.Int64("customer.id", customerID)))
	defer span.End()

	orders := make([]entity.Order, 0)
	err := r.reader.NewSelect().Model(&orders).Where("customer_id = ?", customerID).Order("id ASC").Scan(ctx)
	if err != nil {
		fail(span, err, "select failed")
		return nil, err
	}
	return orders, nil
}

// ExistsForCustomer reports whether the customer owns at least one order.
func (r *Repository) ExistsForCustomer(ctx context.Context, customerID int64) (bool, error) {
	return r.exists(ctx, "OrderRepository.ExistsForCustomer", (*entity.Order)(nil), "customer_id = ?", customerID)
}

// Update overwrites customer, date and status of an existing order.
func (r *Repository) Update(ctx context.Context, order *entity.Order) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().Model(order).WherePK().Exec(ctx)
	if err != nil {
		fail(span, err, "update failed")
	}
	return err
}

// UpdateStatus overwrites only the status column.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", status),
	))
	defer span.End()

	_, err := r.writer.NewUpdate().
		Model((*entity.Order)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		fail(span, err, "update failed")
	}
	return err
}

// Delete removes an order row. Callers enforce the item and shipment guards first.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	_, err := r.writer.NewDelete().Model((*entity.Order)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		fail(span, err, "delete failed")
	}
	return err
}

func (r *Repository) exists(ctx context.Context, spanName string, model any, query string, arg int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, spanName)
	defer span.End()

	ok, err := r.reader.NewSelect().Model(model).Where(query, arg).Exists(ctx)
	if err != nil {
		fail(span, err, "exists failed")
	}
	return ok, err
}

func fail(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}
