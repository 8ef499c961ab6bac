package order

import (
	"context"
	"database/sql"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// CreateShipment persists a new shipment.
func (r *Repository) CreateShipment(ctx context.Context, shipment *entity.Shipment) error {
	if shipment == nil {
		return errors.New("nil shipment")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CreateShipment", trace.WithAttributes(attribute.Int64("order.id", shipment.OrderID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(shipment).Exec(ctx)
	if err != nil {
		fail(span, err, "insert failed")
	}
	return err
}

// GetShipment fetches a shipment by primary key.
func (r *Repository) GetShipment(ctx context.Context, id int64) (*entity.Shipment, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetShipment", trace.WithAttributes(attribute.Int64("shipment.id", id)))
	defer span.End()

	shipment := new(entity.Shipment)
	err := r.reader.NewSelect().Model(shipment).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrShipmentNotFound
	}
	if err != nil {
		fail(span, err, "select failed")
		return nil, err
	}
	return shipment, nil
}

// ListShipments returns the shipments of an order.
func (r *Repository) ListShipments(ctx context.Context, orderID int64) ([]entity.Shipment, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListShipments", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	shipments := make([]entity.Shipment, 0)
	err := r.reader.NewSelect().Model(&shipments).Where("order_id = ?", orderID).Order("id ASC").Scan(ctx)
	if err != nil {
		fail(span, err, "select failed")
		return nil, err
	}
	return shipments, nil
}

// HasShipments reports whether the order owns at least one shipment.
func (r *Repository) HasShipments(ctx context.Context, orderID int64) (bool, error) {
	return r.exists(ctx, "OrderRepository.HasShipments", (*entity.Shipment)(nil), "order_id = ?", orderID)
}

// UpdateShipment overwrites dates and status of an existing shipment.
func (r *Repository) UpdateShipment(ctx context.Context, shipment *entity.Shipment) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateShipment", trace.WithAttributes(attribute.Int64("shipment.id", shipment.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().Model(shipment).WherePK().Exec(ctx)
	if err != nil {
		fail(span, err, "update failed")
	}
	return err
}

// DeleteShipment removes a shipment row.
func (r *Repository) DeleteShipment(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.DeleteShipment", trace.WithAttributes(attribute.Int64("shipment.id", id)))
	defer span.End()

	_, err := r.writer.NewDelete().Model((*entity.Shipment)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		fail(span, err, "delete failed")
	}
	return err
}
