package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// CreateItem persists a new order item. The product reference is stored as given.
func (r *Repository) CreateItem(ctx context.Context, item *entity.OrderItem) error {
	if item == nil {
		return errors.New("nil order item")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CreateItem", trace.WithAttributes(attribute.Int64("order.id", item.OrderID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(item).Exec(ctx)
	if err != nil {
		fail(span, err, "insert failed")
	}
	return err
}

// GetItem fetches an item that belongs to orderID.
func (r *Repository) GetItem(ctx context.Context, orderID, itemID int64) (*entity.OrderItem, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetItem", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("order_item.id", itemID),
	))
	defer span.End()

	item := new(entity.OrderItem)
	err := r.reader.NewSelect().Model(item).
		Where("id = ?", itemID).
		Where("order_id = ?", orderID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrItemNotFound
	}
	if err != nil {
		fail(span, err, "select failed")
		return nil, err
	}
	return item, nil
}

// ListItems returns the items of an order with their products attached.
// Products are fetched in a second query; items whose product no longer
// exists keep a nil Product.
func (r *Repository) ListItems(ctx context.Context, orderID int64) ([]entity.OrderItem, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListItems", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	items := make([]entity.OrderItem, 0)
	err := r.reader.NewSelect().Model(&items).Where("order_id = ?", orderID).Order("id ASC").Scan(ctx)
	if err != nil {
		fail(span, err, "select items failed")
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	products := make([]entity.Product, 0, len(ids))
	err = r.reader.NewSelect().Model(&products).Where("id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		fail(span, err, "select products failed")
		return nil, err
	}

	byID := make(map[int64]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range items {
		items[i].Product = byID[items[i].ProductID]
	}
	return items, nil
}

// HasItems reports whether the order owns at least one item.
func (r *Repository) HasItems(ctx context.Context, orderID int64) (bool, error) {
	return r.exists(ctx, "OrderRepository.HasItems", (*entity.OrderItem)(nil), "order_id = ?", orderID)
}

// ProductHasItems reports whether any order item references the product.
func (r *Repository) ProductHasItems(ctx context.Context, productID int64) (bool, error) {
	return r.exists(ctx, "OrderRepository.ProductHasItems", (*entity.OrderItem)(nil), "product_id = ?", productID)
}

// DeleteItem removes a single order item.
func (r *Repository) DeleteItem(ctx context.Context, itemID int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.DeleteItem", trace.WithAttributes(attribute.Int64("order_item.id", itemID)))
	defer span.End()

	_, err := r.writer.NewDelete().Model((*entity.OrderItem)(nil)).Where("id = ?", itemID).Exec(ctx)
	if err != nil {
		fail(span, err, "delete failed")
	}
	return err
}
