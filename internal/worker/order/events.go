package order

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	ordersvc "github.com/Additional-Code/orderdesk/internal/service/order"
	"github.com/Additional-Code/orderdesk/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/orderdesk/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderEventsHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderEventsHandler consumes order events: it logs each one and evicts the
// order's cache entry so API replicas reload it from the database.
// Undecodable messages are dropped; a failed eviction is returned for redelivery.
func NewOrderEventsHandler(logger *zap.Logger, cfg config.Config, store cache.Store) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.String("messaging.key", string(msg.Key)),
		))
		defer span.End()

		var event ordersvc.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("dropping undecodable order event", zap.Int64("offset", msg.Offset), zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return nil
		}
		span.SetAttributes(
			attribute.String("order.event", event.Type),
			attribute.Int64("order.id", event.ID),
		)

		switch event.Type {
		case ordersvc.EventCreated, ordersvc.EventUpdated, ordersvc.EventStatusChanged, ordersvc.EventDeleted:
		default:
			logger.Warn("unknown order event type", zap.String("type", event.Type), zap.Int64("id", event.ID))
			return nil
		}

		if store != nil {
			if err := store.Delete(ctx, ordersvc.CacheKey(event.ID)); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "cache eviction failed")
				return fmt.Errorf("evict order %d: %w", event.ID, err)
			}
		}

		logger.Info("order event processed",
			zap.String("type", event.Type),
			zap.Int64("id", event.ID),
			zap.Int64("customer_id", event.CustomerID),
			zap.String("status", event.Status),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
