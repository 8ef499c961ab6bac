package catalog

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/database"
	catalogrepo "github.com/Additional-Code/orderdesk/internal/repository/catalog"
	orderrepo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/orderdesk/service/catalog")
	serviceMeter  = otel.Meter("github.com/Additional-Code/orderdesk/service/catalog")
)

// Service manages suppliers and the products they provide.
type Service struct {
	db              *database.Connections
	catalog         *catalogrepo.Repository
	orders          *orderrepo.Repository
	logger          *zap.Logger
	guardRejections metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Connections *database.Connections
	Catalog     *catalogrepo.Repository
	Orders      *orderrepo.Repository
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
		catalog:         p.Catalog,
		orders:          p.Orders,
		logger:          p.Logger,
		guardRejections: rejections,
	}, nil
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
