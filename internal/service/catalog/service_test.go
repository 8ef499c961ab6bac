package catalog

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
	catalogrepo "github.com/Additional-Code/orderdesk/internal/repository/catalog"
	orderrepo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/internal/testutil"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

type fixture struct {
	svc    *Service
	orders *orderrepo.Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	cfg := testutil.Config(t)
	conns := testutil.NewConnections(t, cfg)
	orders := orderrepo.NewRepository(conns)

	svc, err := NewService(Params{
		Connections: conns,
		Catalog:     catalogrepo.NewRepository(conns),
		Orders:      orders,
		Logger:      testutil.Logger(t),
	})
	require.NoError(t, err)

	return fixture{svc: svc, orders: orders}
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	appErr := errorbank.From(err)
	assert.Equal(t, status, appErr.StatusCode())
	assert.Equal(t, message, appErr.Message())
}

func productRequest(name, price string, supplierID int64) dto.ProductRequest {
	p := decimal.RequireFromString(price)
	return dto.ProductRequest{Name: name, Price: &p, SupplierID: &supplierID}
}

func (f fixture) supplier(t *testing.T) *entity.Supplier {
	t.Helper()
	s, err := f.svc.CreateSupplier(context.Background(), dto.SupplierRequest{Name: "Acme", ContactInfo: "sales@acme.test"})
	require.NoError(t, err)
	return s
}

func TestSupplierLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSupplier(ctx, dto.SupplierRequest{Name: "Acme"})
	requireAppError(t, err, http.StatusBadRequest, "name and contact_info are required")

	supplier := f.supplier(t)

	updated, err := f.svc.UpdateSupplier(ctx, supplier.ID, dto.SupplierRequest{Name: "Acme Corp", ContactInfo: "ops@acme.test"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)

	_, err = f.svc.UpdateSupplier(ctx, 12, dto.SupplierRequest{Name: "x", ContactInfo: "y"})
	requireAppError(t, err, http.StatusNotFound, "Supplier 12 not found")

	suppliers, err := f.svc.ListSuppliers(ctx)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, "ops@acme.test", suppliers[0].ContactInfo)

	require.NoError(t, f.svc.DeleteSupplier(ctx, supplier.ID))
	_, err = f.svc.GetSupplier(ctx, supplier.ID)
	requireAppError(t, err, http.StatusNotFound, "Supplier 1 not found")
}

func TestSupplierDeleteGuardedByProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supplier := f.supplier(t)

	_, err := f.svc.CreateProduct(ctx, productRequest("Widget", "9.99", supplier.ID))
	require.NoError(t, err)

	err = f.svc.DeleteSupplier(ctx, supplier.ID)
	requireAppError(t, err, http.StatusBadRequest,
		"Supplier 1 has associated data in products table and cannot be deleted")

	products, err := f.svc.SupplierProducts(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = f.svc.SupplierProducts(ctx, 3)
	requireAppError(t, err, http.StatusNotFound, "Supplier 3 not present")
}

func TestProductLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supplier := f.supplier(t)

	product, err := f.svc.CreateProduct(ctx, productRequest("Widget", "9.99", supplier.ID))
	require.NoError(t, err)
	assert.Zero(t, product.Stock)
	require.NotNil(t, product.Supplier)
	assert.Equal(t, "Acme", product.Supplier.Name)

	stock := 25
	req := productRequest("Widget v2", "12.50", supplier.ID)
	req.Stock = &stock
	updated, err := f.svc.UpdateProduct(ctx, product.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Stock)

	got, err := f.svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", got.Name)
	assert.True(t, decimal.RequireFromString("12.50").Equal(got.Price))
	require.NotNil(t, got.Supplier)
	assert.Equal(t, supplier.ID, got.Supplier.ID)

	products, err := f.svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NotNil(t, products[0].Supplier)

	require.NoError(t, f.svc.DeleteProduct(ctx, product.ID))
	_, err = f.svc.GetProduct(ctx, product.ID)
	requireAppError(t, err, http.StatusNotFound, "Product 1 not found")
}

func TestProductPriceRoundedToStoredScale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supplier := f.supplier(t)

	product, err := f.svc.CreateProduct(ctx, productRequest("Widget", "4.005", supplier.ID))
	require.NoError(t, err)
	assert.Equal(t, "4.01", product.Price.String())

	got, err := f.svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, product.Price.Equal(got.Price))

	updated, err := f.svc.UpdateProduct(ctx, product.ID, productRequest("Widget", "4.004", supplier.ID))
	require.NoError(t, err)
	assert.Equal(t, "4", updated.Price.String())
}

func TestProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supplier := f.supplier(t)

	_, err := f.svc.CreateProduct(ctx, dto.ProductRequest{Name: "Widget"})
	requireAppError(t, err, http.StatusBadRequest, "name, price and supplier_id are required")

	_, err = f.svc.CreateProduct(ctx, productRequest("Widget", "-0.01", supplier.ID))
	requireAppError(t, err, http.StatusBadRequest, "price must not be negative")

	negative := -1
	req := productRequest("Widget", "1.00", supplier.ID)
	req.Stock = &negative
	_, err = f.svc.CreateProduct(ctx, req)
	requireAppError(t, err, http.StatusBadRequest, "stock must not be negative")

	_, err = f.svc.CreateProduct(ctx, productRequest("Widget", "10000000000.00", supplier.ID))
	requireAppError(t, err, http.StatusBadRequest, "price must not exceed 9999999999.99")

	_, err = f.svc.CreateProduct(ctx, productRequest("Widget", "1.00", 77))
	requireAppError(t, err, http.StatusNotFound, "Supplier 77 not present")

	// supplier is checked before the product itself
	_, err = f.svc.UpdateProduct(ctx, 5, productRequest("Widget", "1.00", 77))
	requireAppError(t, err, http.StatusNotFound, "Supplier 77 not present")

	_, err = f.svc.UpdateProduct(ctx, 5, productRequest("Widget", "1.00", supplier.ID))
	requireAppError(t, err, http.StatusNotFound, "Product 5 not found")
}

func TestProductDeleteGuardedByOrderItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supplier := f.supplier(t)

	product, err := f.svc.CreateProduct(ctx, productRequest("Widget", "9.99", supplier.ID))
	require.NoError(t, err)

	order := &entity.Order{
		CustomerID: 1,
		OrderDate:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:     entity.OrderStatusPending,
	}
	require.NoError(t, f.orders.Create(ctx, order))
	require.NoError(t, f.orders.CreateItem(ctx, &entity.OrderItem{
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  1,
		Price:     product.Price,
	}))

	err = f.svc.DeleteProduct(ctx, product.ID)
	requireAppError(t, err, http.StatusBadRequest,
		"Product 1 has associated data in order items table and cannot be deleted")

	err = f.svc.DeleteProduct(ctx, 40)
	requireAppError(t, err, http.StatusNotFound, "Product 40 not found")
}
