package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// Order event types published on the messaging topic.
const (
	EventCreated       = "order.created"
	EventUpdated       = "order.updated"
	EventStatusChanged = "order.status_changed"
	EventDeleted       = "order.deleted"
)

// OrderEvent is emitted after an order mutation commits.
type OrderEvent struct {
	Type       string    `json:"type"`
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Status     string    `json:"status"`
	OrderDate  time.Time `json:"order_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventKey is the message key for events about an order.
func EventKey(id int64) []byte {
	return []byte(fmt.Sprintf("order-%d", id))
}

func (s *Service) publish(ctx context.Context, eventType string, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderEvent{
		Type:       eventType,
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Status:     order.Status,
		OrderDate:  order.OrderDate,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, EventKey(order.ID), payload); err != nil {
		s.logger.Error("publish order event",
			zap.String("type", eventType),
			zap.String("topic", s.messaging.topic),
			zap.Int64("id", order.ID),
			zap.Error(err),
		)
	}
}
