package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
	catalogrepo "github.com/Additional-Code/orderdesk/internal/repository/catalog"
	orderrepo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// Items lists the items of an order, each with its product when it still exists.
func (s *Service) Items(ctx context.Context, orderID int64) ([]entity.OrderItem, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Items", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	if err := s.orderExists(ctx, span, s.orders, orderID); err != nil {
		return nil, err
	}

	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, s.internal(span, "failed to list order items", err)
	}
	return items, nil
}

// AddItem appends an item to an order. The product reference is not checked.
// The price is rounded to the stored scale and returned as stored.
func (s *Service) AddItem(ctx context.Context, orderID int64, req dto.OrderItemRequest) (*entity.OrderItem, error) {
	if req.ProductID == nil || req.Price == nil {
		return nil, errorbank.BadRequest("product_id, quantity and price are required")
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.AddItem", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("product.id", *req.ProductID),
	))
	defer span.End()

	var item *entity.OrderItem
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		orders := s.orders.WithTx(tx)
		if err := s.orderExists(ctx, span, orders, orderID); err != nil {
			return err
		}
		if req.Quantity <= 0 {
			return errorbank.BadRequest("quantity must be greater than 0")
		}
		price := entity.StoredPrice(*req.Price)
		if price.IsNegative() {
			return errorbank.BadRequest("price must not be negative")
		}
		if price.GreaterThan(entity.MaxPrice) {
			return errorbank.BadRequest(msgPriceTooLarge)
		}

		item = &entity.OrderItem{
			OrderID:   orderID,
			ProductID: *req.ProductID,
			Quantity:  req.Quantity,
			Price:     price,
		}
		if err := orders.CreateItem(ctx, item); err != nil {
			return s.internal(span, "failed to create order item", err)
		}

		product, err := s.catalog.WithTx(tx).GetProduct(ctx, item.ProductID)
		switch {
		case err == nil:
			item.Product = product
		case !errors.Is(err, catalogrepo.ErrProductNotFound):
			return s.internal(span, "failed to load product", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item that belongs to orderID.
func (s *Service) DeleteItem(ctx context.Context, orderID, itemID int64) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.DeleteItem", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("order_item.id", itemID),
	))
	defer span.End()

	return s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		orders := s.orders.WithTx(tx)
		if _, err := orders.GetItem(ctx, orderID, itemID); err != nil {
			if errors.Is(err, orderrepo.ErrItemNotFound) {
				return errorbank.NotFound(fmt.Sprintf("Order item %d not found", itemID))
			}
			return s.internal(span, "failed to load order item", err)
		}
		if err := orders.DeleteItem(ctx, itemID); err != nil {
			return s.internal(span, "failed to delete order item", err)
		}
		return nil
	})
}
