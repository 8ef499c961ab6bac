package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
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
	customerrepo "github.com/Additional-Code/orderdesk/internal/repository/customer"
	orderrepo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/orderdesk/service/customer")
	serviceMeter  = otel.Meter("github.com/Additional-Code/orderdesk/service/customer")
)

// Service encapsulates business logic around customers.
type Service struct {
	db              *database.Connections
	customers       *customerrepo.Repository
	orders          *orderrepo.Repository
	cache           cache.Store
	cacheTTL        time.Duration
	logger          *zap.Logger
	guardRejections metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Connections *database.Connections
	Customers   *customerrepo.Repository
	Orders      *orderrepo.Repository
	Cache       cache.Store
	Config      config.Config
	Logger      *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) (*Service, error) {
	rejections, err := serviceMeter.Int64Counter("orderdesk.delete_guard.rejections",
		metric.WithDescription("Deletes refused because dependent rows exist"),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		db:              p.Connections,
		customers:       p.Customers,
		orders:          p.Orders,
		cache:           p.Cache,
		cacheTTL:        p.Config.Cache.DefaultTTL,
		logger:          p.Logger,
		guardRejections: rejections,
	}, nil
}

// List returns all customers in insertion order.
func (s *Service) List(ctx context.Context) ([]entity.Customer, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.List")
	defer span.End()

	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, s.internal(span, "failed to list customers", err)
	}
	return customers, nil
}

// Get retrieves a customer by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Customer, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Get", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	var cached entity.Customer
	if err := cache.GetJSON(ctx, s.cache, cacheKey(id), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("customers cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, customerrepo.ErrNotFound) {
			return nil, errorbank.NotFound(fmt.Sprintf("Customer %d not found", id))
		}
		return nil, s.internal(span, "failed to load customer", err)
	}

	s.storeInCache(ctx, customer)
	return customer, nil
}

// Create validates and persists a new customer.
func (s *Service) Create(ctx context.Context, req dto.CustomerRequest) (*entity.Customer, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Create")
	defer span.End()

	customer := &entity.Customer{Name: req.Name, ContactInfo: req.ContactInfo}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, s.internal(span, "failed to create customer", err)
	}

	s.storeInCache(ctx, customer)
	return customer, nil
}

// Update replaces name and contact info of an existing customer.
func (s *Service) Update(ctx context.Context, id int64, req dto.CustomerRequest) (*entity.Customer, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Update", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	var customer *entity.Customer
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		customers := s.customers.WithTx(tx)

		existing, err := customers.GetByID(ctx, id)
		if errors.Is(err, customerrepo.ErrNotFound) {
			return errorbank.NotFound(fmt.Sprintf("Customer %d not found", id))
		}
		if err != nil {
			return s.internal(span, "failed to load customer", err)
		}

		existing.Name = req.Name
		existing.ContactInfo = req.ContactInfo
		if err := customers.Update(ctx, existing); err != nil {
			return s.internal(span, "failed to update customer", err)
		}
		customer = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.storeInCache(ctx, customer)
	return customer, nil
}

// Delete removes a customer that owns no orders.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Delete", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	err := s.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		exists, err := s.customers.WithTx(tx).Exists(ctx, id)
		if err != nil {
			return s.internal(span, "failed to load customer", err)
		}
		if !exists {
			return errorbank.NotFound(fmt.Sprintf("Customer %d not found", id))
		}

		hasOrders, err := s.orders.WithTx(tx).ExistsForCustomer(ctx, id)
		if err != nil {
			return s.internal(span, "failed to check customer orders", err)
		}
		if hasOrders {
			s.guardRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", "customer")))
			return errorbank.Dependency(fmt.Sprintf("Customer %d has associated data in orders tables and cannot be deleted", id))
		}

		if err := s.customers.WithTx(tx).Delete(ctx, id); err != nil {
			return s.internal(span, "failed to delete customer", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := cache.Delete(ctx, s.cache, cacheKey(id)); err != nil {
		s.logger.Warn("customers cache delete failed", zap.Int64("id", id), zap.Error(err))
	}
	return nil
}

// Orders returns the orders owned by a customer.
func (s *Service) Orders(ctx context.Context, id int64) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Orders", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	exists, err := s.customers.Exists(ctx, id)
	if err != nil {
		return nil, s.internal(span, "failed to load customer", err)
	}
	if !exists {
		return nil, errorbank.NotFound(fmt.Sprintf("Customer %d not present", id))
	}

	orders, err := s.orders.ListByCustomer(ctx, id)
	if err != nil {
		return nil, s.internal(span, "failed to list customer orders", err)
	}
	return orders, nil
}

func validate(req dto.CustomerRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.ContactInfo) == "" {
		return errorbank.BadRequest("name and contact_info are required")
	}
	return nil
}

func (s *Service) internal(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "repository error")
	s.logger.Error(msg, zap.Error(err))
	return errorbank.Internal(msg, errorbank.WithCause(err))
}

func (s *Service) storeInCache(ctx context.Context, customer *entity.Customer) {
	if err := cache.SetJSON(ctx, s.cache, cacheKey(customer.ID), customer, s.cacheTTL); err != nil {
		s.logger.Warn("customers cache write failed", zap.Int64("id", customer.ID), zap.Error(err))
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("customers:%d", id)
}
