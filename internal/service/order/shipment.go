package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
	orderrepo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// Shipments lists the shipments of an order.
func (s *Service) Shipments(ctx context.Context, orderID int64) ([]entity.Shipment, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Shipments", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	if err := s.orderExists(ctx, span, s.orders, orderID); err != nil {
		return nil, err
	}

	shipments, err := s.orders.ListShipments(ctx, orderID)
	if err != nil {
		return nil, s.internal(span, "failed to list shipments", err)
	}
	return shipments, nil
}

// AddShipment records a shipment for an order. Status defaults to Shipped.
func (s *Service) AddShipment(ctx context.Context, orderID int64, req dto.ShipmentRequest) (*entity.Shipment, error) {
	if err := validateShipment(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.AddShipment", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	var shipment *entity.Shipment
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		orders := s.orders.WithTx(tx)
		if err := s.orderExists(ctx, span, orders, orderID); err != nil {
			return err
		}

		shipped, delivered, err := parseShipmentDates(req)
		if err != nil {
			return err
		}

		shipment = &entity.Shipment{
			OrderID:      orderID,
			ShipmentDate: shipped,
			DeliveryDate: delivered,
			Status:       shipmentStatus(req.Status),
		}
		if err := orders.CreateShipment(ctx, shipment); err != nil {
			return s.internal(span, "failed to create shipment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// UpdateShipment replaces the dates and status of a shipment.
func (s *Service) UpdateShipment(ctx context.Context, id int64, req dto.ShipmentRequest) (*entity.Shipment, error) {
	if err := validateShipment(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateShipment", trace.WithAttributes(attribute.Int64("shipment.id", id)))
	defer span.End()

	var shipment *entity.Shipment
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		orders := s.orders.WithTx(tx)
		existing, err := orders.GetShipment(ctx, id)
		if errors.Is(err, orderrepo.ErrShipmentNotFound) {
			return errorbank.NotFound(fmt.Sprintf("Shipment %d not found", id))
		}
		if err != nil {
			return s.internal(span, "failed to load shipment", err)
		}

		shipped, delivered, err := parseShipmentDates(req)
		if err != nil {
			return err
		}

		existing.ShipmentDate = shipped
		existing.DeliveryDate = delivered
		existing.Status = shipmentStatus(req.Status)
		if err := orders.UpdateShipment(ctx, existing); err != nil {
			return s.internal(span, "failed to update shipment", err)
		}
		shipment = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// DeleteShipment removes a shipment.
func (s *Service) DeleteShipment(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.DeleteShipment", trace.WithAttributes(attribute.Int64("shipment.id", id)))
	defer span.End()

	return s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		orders := s.orders.WithTx(tx)
		if _, err := orders.GetShipment(ctx, id); err != nil {
			if errors.Is(err, orderrepo.ErrShipmentNotFound) {
				return errorbank.NotFound(fmt.Sprintf("Shipment %d not found", id))
			}
			return s.internal(span, "failed to load shipment", err)
		}
		if err := orders.DeleteShipment(ctx, id); err != nil {
			return s.internal(span, "failed to delete shipment", err)
		}
		return nil
	})
}

func validateShipment(req dto.ShipmentRequest) error {
	if req.ShipmentDate == "" {
		return errorbank.BadRequest("shipment_date is required")
	}
	if !entity.StatusFits(req.Status) {
		return errorbank.BadRequest(msgStatusTooLong)
	}
	return nil
}

func parseShipmentDates(req dto.ShipmentRequest) (time.Time, time.Time, error) {
	shipped, err := dto.ParseTimestamp(req.ShipmentDate)
	if err != nil {
		return time.Time{}, time.Time{}, errorbank.BadRequest(MsgInvalidDate, errorbank.WithCause(err))
	}
	if req.DeliveryDate == "" {
		return shipped, time.Time{}, nil
	}
	delivered, err := dto.ParseTimestamp(req.DeliveryDate)
	if err != nil {
		return time.Time{}, time.Time{}, errorbank.BadRequest(MsgInvalidDate, errorbank.WithCause(err))
	}
	return shipped, delivered, nil
}

func shipmentStatus(status string) string {
	if status == "" {
		return entity.ShipmentStatusShipped
	}
	return status
}
