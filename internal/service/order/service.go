package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	catalogrepo "github.com/Additional-Code/orderdesk/internal/repository/catalog"
	customerrepo "github.com/Additional-Code/orderdesk/internal/repository/customer"
	orderrepo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// Client-facing messages.
const (
	MsgInvalidDate   = "Invalid date format. Use ISO 8601 format."
	MsgInvalidStatus = "Invalid status. Please set status to Pending, Fulfilled, or Cancelled."
)

var (
	msgStatusTooLong = fmt.Sprintf("status must be at most %d characters", entity.MaxStatusLength)
	msgPriceTooLarge = "price must not exceed " + entity.MaxPrice.StringFixed(entity.PriceScale)
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/orderdesk/service/order")
	serviceMeter  = otel.Meter("github.com/Additional-Code/orderdesk/service/order")
)

// Service encapsulates business logic around orders, their items and shipments.
type Service struct {
	db        *database.Connections
	orders    *orderrepo.Repository
	customers *customerrepo.Repository
	catalog   *catalogrepo.Repository
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig

	statusUpdates   metric.Int64Counter
	guardRejections metric.Int64Counter
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Connections *database.Connections
	Orders      *orderrepo.Repository
	Customers   *customerrepo.Repository
	Catalog     *catalogrepo.Repository
	Cache       cache.Store
	Config      config.Config
	Logger      *zap.Logger
	Publisher   messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) (*Service, error) {
	statusUpdates, err := serviceMeter.Int64Counter("orderdesk.orders.status_updates",
		metric.WithDescription("Order status changes applied through the status operation"),
	)
	if err != nil {
		return nil, err
	}
	rejections, err := serviceMeter.Int64Counter("orderdesk.delete_guard.rejections",
		metric.WithDescription("Deletes refused because dependent rows exist"),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		db:        p.Connections,
		orders:    p.Orders,
		customers: p.Customers,
		catalog:   p.Catalog,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
		statusUpdates:   statusUpdates,
		guardRejections: rejections,
	}, nil
}

// List returns all orders in insertion order.
func (s *Service) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, s.internal(span, "failed to list orders", err)
	}
	return orders, nil
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	var cached entity.Order
	if err := cache.GetJSON(ctx, s.cache, CacheKey(id), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound(fmt.Sprintf("Order %d not found", id))
		}
		return nil, s.internal(span, "failed to load order", err)
	}

	s.storeInCache(ctx, order)
	return order, nil
}

// Create validates the customer reference and order date, then persists the
// order. The status is stored as given; only UpdateStatus enforces the whitelist.
func (s *Service) Create(ctx context.Context, req dto.OrderRequest) (*entity.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.Int64("customer.id", *req.CustomerID)))
	defer span.End()

	var order *entity.Order
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		orderDate, err := s.checkCustomerAndDate(ctx, span, tx, req)
		if err != nil {
			return err
		}

		order = &entity.Order{
			CustomerID: *req.CustomerID,
			OrderDate:  orderDate,
			Status:     *req.Status,
		}
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return s.internal(span, "failed to create order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.storeInCache(ctx, order)
	s.publish(ctx, EventCreated, order)
	return order, nil
}

// Update replaces customer, date and status of an existing order. Checks run
// customer, then date, then order existence.
func (s *Service) Update(ctx context.Context, id int64, req dto.OrderRequest) (*entity.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	var order *entity.Order
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		orderDate, err := s.checkCustomerAndDate(ctx, span, tx, req)
		if err != nil {
			return err
		}

		orders := s.orders.WithTx(tx)
		existing, err := orders.GetByID(ctx, id)
		if errors.Is(err, orderrepo.ErrNotFound) {
			return errorbank.NotFound(fmt.Sprintf("Order %d not present", id))
		}
		if err != nil {
			return s.internal(span, "failed to load order", err)
		}

		existing.CustomerID = *req.CustomerID
		existing.OrderDate = orderDate
		existing.Status = *req.Status
		if err := orders.Update(ctx, existing); err != nil {
			return s.internal(span, "failed to update order", err)
		}
		order = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.storeInCache(ctx, order)
	s.publish(ctx, EventUpdated, order)
	return order, nil
}

// Delete removes an order that owns no items and no shipments. The items
// guard is checked before the shipments guard.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	var order *entity.Order
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		orders := s.orders.WithTx(tx)

		existing, err := orders.GetByID(ctx, id)
		if errors.Is(err, orderrepo.ErrNotFound) {
			return errorbank.NotFound(fmt.Sprintf("Order %d not found", id))
		}
		if err != nil {
			return s.internal(span, "failed to load order", err)
		}

		hasItems, err := orders.HasItems(ctx, id)
		if err != nil {
			return s.internal(span, "failed to check order items", err)
		}
		if hasItems {
			s.rejected(ctx, "order")
			return errorbank.Dependency(fmt.Sprintf("Order %d has associated data in order items table and cannot be deleted", id))
		}

		hasShipments, err := orders.HasShipments(ctx, id)
		if err != nil {
			return s.internal(span, "failed to check order shipments", err)
		}
		if hasShipments {
			s.rejected(ctx, "order")
			return errorbank.Dependency(fmt.Sprintf("Order %d has associated data in shipment table and cannot be deleted", id))
		}

		if err := orders.Delete(ctx, id); err != nil {
			return s.internal(span, "failed to delete order", err)
		}
		order = existing
		return nil
	})
	if err != nil {
		return err
	}

	s.evict(ctx, id)
	s.publish(ctx, EventDeleted, order)
	return nil
}

// UpdateStatus sets a whitelisted status. The whitelist is checked before
// the order is looked up.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*entity.Order, error) {
	if !entity.IsValidOrderStatus(status) {
		return nil, errorbank.BadRequest(MsgInvalidStatus)
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", status),
	))
	defer span.End()

	var order *entity.Order
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		orders := s.orders.WithTx(tx)

		existing, err := orders.GetByID(ctx, id)
		if errors.Is(err, orderrepo.ErrNotFound) {
			return errorbank.NotFound(fmt.Sprintf("Order %d not found", id))
		}
		if err != nil {
			return s.internal(span, "failed to load order", err)
		}

		if err := orders.UpdateStatus(ctx, id, status); err != nil {
			return s.internal(span, "failed to update order status", err)
		}
		existing.Status = status
		order = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.statusUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	s.storeInCache(ctx, order)
	s.publish(ctx, EventStatusChanged, order)
	return order, nil
}

func (s *Service) checkCustomerAndDate(ctx context.Context, span trace.Span, tx bun.IDB, req dto.OrderRequest) (time.Time, error) {
	customerID := *req.CustomerID
	exists, err := s.customers.WithTx(tx).Exists(ctx, customerID)
	if err != nil {
		return time.Time{}, s.internal(span, "failed to load customer", err)
	}
	if !exists {
		return time.Time{}, errorbank.NotFound(fmt.Sprintf("Customer %d not present", customerID))
	}

	orderDate, err := dto.ParseTimestamp(req.OrderDate)
	if err != nil {
		return time.Time{}, errorbank.BadRequest(MsgInvalidDate, errorbank.WithCause(err))
	}
	return orderDate, nil
}

// validate only requires the keys to be present; any status string,
// including "", is stored as given on create and update.
func validate(req dto.OrderRequest) error {
	if req.CustomerID == nil || req.OrderDate == "" || req.Status == nil {
		return errorbank.BadRequest("customer_id, order_date and status are required")
	}
	if !entity.StatusFits(*req.Status) {
		return errorbank.BadRequest(msgStatusTooLong)
	}
	return nil
}

func (s *Service) orderExists(ctx context.Context, span trace.Span, orders *orderrepo.Repository, id int64) error {
	exists, err := orders.Exists(ctx, id)
	if err != nil {
		return s.internal(span, "failed to load order", err)
	}
	if !exists {
		return errorbank.NotFound(fmt.Sprintf("Order %d not present", id))
	}
	return nil
}

func (s *Service) rejected(ctx context.Context, entityName string) {
	s.guardRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", entityName)))
}

func (s *Service) internal(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "repository error")
	s.logger.Error(msg, zap.Error(err))
	return errorbank.Internal(msg, errorbank.WithCause(err))
}

// CacheKey is the cache key under which an order is stored.
func CacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) {
	if err := cache.SetJSON(ctx, s.cache, CacheKey(order.ID), order, s.cacheTTL); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
	}
}

func (s *Service) evict(ctx context.Context, id int64) {
	if err := cache.Delete(ctx, s.cache, CacheKey(id)); err != nil {
		s.logger.Warn("orders cache delete failed", zap.Int64("id", id), zap.Error(err))
	}
}
