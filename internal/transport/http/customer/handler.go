package customer

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/presentation/http/request"
	"github.com/Additional-Code/orderdesk/internal/presentation/http/response"
	service "github.com/Additional-Code/orderdesk/internal/service/customer"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/orderdesk/transport/http/customer")

// Handler exposes customer endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a customer Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/customers")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.GET("/:id/orders", h.orders)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.list")
	defer span.End()

	customers, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewCustomerResponses(customers)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CustomerRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.create")
	defer span.End()

	customer, err := h.svc.Create(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithHeader(echo.HeaderLocation, fmt.Sprintf("/customers/%d", customer.ID)).
		WithData(dto.NewCustomerResponse(customer)).
		Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.get", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	customer, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewCustomerResponse(customer)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload dto.CustomerRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.update", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	customer, err := h.svc.Update(ctx, id, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewCustomerResponse(customer)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.delete", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.MessageResponse{Message: "customer deleted successfully"}).Build()
}

func (h *Handler) orders(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.orders", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	orders, err := h.svc.Orders(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponses(orders)).Build()
}
