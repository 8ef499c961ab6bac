package catalog

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
	service "github.com/Additional-Code/orderdesk/internal/service/catalog"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/orderdesk/transport/http/catalog")

// Handler exposes supplier and product endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	s := e.Group("/suppliers")
	s.GET("", h.listSuppliers)
	s.POST("", h.createSupplier)
	s.GET("/:id", h.getSupplier)
	s.PUT("/:id", h.updateSupplier)
	s.DELETE("/:id", h.deleteSupplier)
	s.GET("/:id/products", h.supplierProducts)

	p := e.Group("/products")
	p.GET("", h.listProducts)
	p.POST("", h.createProduct)
	p.GET("/:id", h.getProduct)
	p.PUT("/:id", h.updateProduct)
	p.DELETE("/:id", h.deleteProduct)
}

func (h *Handler) listSuppliers(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.list")
	defer span.End()

	suppliers, err := h.svc.ListSuppliers(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewSupplierResponses(suppliers)).Build()
}

func (h *Handler) createSupplier(c echo.Context) error {
	b := response.New(c)

	var payload dto.SupplierRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.create")
	defer span.End()

	supplier, err := h.svc.CreateSupplier(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithHeader(echo.HeaderLocation, fmt.Sprintf("/suppliers/%d", supplier.ID)).
		WithData(dto.NewSupplierResponse(supplier)).
		Build()
}

func (h *Handler) getSupplier(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.get", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	supplier, err := h.svc.GetSupplier(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewSupplierResponse(supplier)).Build()
}

func (h *Handler) updateSupplier(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload dto.SupplierRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.update", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	supplier, err := h.svc.UpdateSupplier(ctx, id, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewSupplierResponse(supplier)).Build()
}

func (h *Handler) deleteSupplier(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.delete", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	if err := h.svc.DeleteSupplier(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.MessageResponse{Message: "Supplier deleted successfully"}).Build()
}

func (h *Handler) supplierProducts(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.products", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	products, err := h.svc.SupplierProducts(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProductResponses(products)).Build()
}

func (h *Handler) listProducts(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "products.list")
	defer span.End()

	products, err := h.svc.ListProducts(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProductResponses(products)).Build()
}

func (h *Handler) createProduct(c echo.Context) error {
	b := response.New(c)

	var payload dto.ProductRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.create")
	defer span.End()

	product, err := h.svc.CreateProduct(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).
		WithHeader(echo.HeaderLocation, fmt.Sprintf("/products/%d", product.ID)).
		WithData(dto.NewProductResponse(product)).
		Build()
}

func (h *Handler) getProduct(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.get", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.GetProduct(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProductResponse(product)).Build()
}

func (h *Handler) updateProduct(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload dto.ProductRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.UpdateProduct(ctx, id, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProductResponse(product)).Build()
}

func (h *Handler) deleteProduct(c echo.Context) error {
	b := response.New(c)

	id, err := request.ID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.delete", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := h.svc.DeleteProduct(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.MessageResponse{Message: "Product deleted successfully"}).Build()
}
