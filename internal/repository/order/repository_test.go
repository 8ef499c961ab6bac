package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/Additional-Code/orderdesk/internal/entity"
	orderrepo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/internal/testutil"
)

type fixture struct {
	db    *bun.DB
	repo  *orderrepo.Repository
	order *entity.Order
}

func setup(t *testing.T) fixture {
	t.Helper()
	conns := testutil.NewConnections(t, testutil.Config(t))
	ctx := context.Background()

	customer := &entity.Customer{Name: "Ada", ContactInfo: "ada@example.test"}
	_, err := conns.Writer.NewInsert().Model(customer).Exec(ctx)
	require.NoError(t, err)

	repo := orderrepo.NewRepository(conns)
	order := &entity.Order{CustomerID: customer.ID, OrderDate: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Status: "Pending"}
	require.NoError(t, repo.Create(ctx, order))

	return fixture{db: conns.Writer, repo: repo, order: order}
}

func (f fixture) product(t *testing.T, name string) *entity.Product {
	t.Helper()
	ctx := context.Background()
	supplier := &entity.Supplier{Name: name + " Supply", ContactInfo: "sales@example.test"}
	_, err := f.db.NewInsert().Model(supplier).Exec(ctx)
	require.NoError(t, err)
	product := &entity.Product{Name: name, Price: decimal.RequireFromString("2.50"), SupplierID: supplier.ID}
	_, err = f.db.NewInsert().Model(product).Exec(ctx)
	require.NoError(t, err)
	return product
}

func TestListItemsAttachesExistingProducts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	widget := f.product(t, "Widget")

	require.NoError(t, f.repo.CreateItem(ctx, &entity.OrderItem{OrderID: f.order.ID, ProductID: widget.ID, Quantity: 2, Price: decimal.RequireFromString("2.50")}))
	require.NoError(t, f.repo.CreateItem(ctx, &entity.OrderItem{OrderID: f.order.ID, ProductID: 9999, Quantity: 1, Price: decimal.Zero}))

	items, err := f.repo.ListItems(ctx, f.order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Widget", items[0].Product.Name)
	assert.Nil(t, items[1].Product)

	hasItems, err := f.repo.HasItems(ctx, f.order.ID)
	require.NoError(t, err)
	assert.True(t, hasItems)

	referenced, err := f.repo.ProductHasItems(ctx, widget.ID)
	require.NoError(t, err)
	assert.True(t, referenced)
}

func TestGetItemIsScopedToOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	item := &entity.OrderItem{OrderID: f.order.ID, ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(1)}
	require.NoError(t, f.repo.CreateItem(ctx, item))

	got, err := f.repo.GetItem(ctx, f.order.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = f.repo.GetItem(ctx, f.order.ID+1, item.ID)
	assert.ErrorIs(t, err, orderrepo.ErrItemNotFound)
}

func TestUpdateStatusAndDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.repo.UpdateStatus(ctx, f.order.ID, "Fulfilled"))
	got, err := f.repo.GetByID(ctx, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fulfilled", got.Status)
	assert.True(t, got.OrderDate.Equal(f.order.OrderDate))

	owned, err := f.repo.ExistsForCustomer(ctx, f.order.CustomerID)
	require.NoError(t, err)
	assert.True(t, owned)

	require.NoError(t, f.repo.Delete(ctx, f.order.ID))
	_, err = f.repo.GetByID(ctx, f.order.ID)
	assert.ErrorIs(t, err, orderrepo.ErrNotFound)
}

func TestShipmentsRoundTrip(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	shipment := &entity.Shipment{OrderID: f.order.ID, ShipmentDate: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Status: entity.ShipmentStatusShipped}
	require.NoError(t, f.repo.CreateShipment(ctx, shipment))

	list, err := f.repo.ListShipments(ctx, f.order.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].DeliveryDate.IsZero())

	shipment.Status = "Delivered"
	shipment.DeliveryDate = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.repo.UpdateShipment(ctx, shipment))

	got, err := f.repo.GetShipment(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Delivered", got.Status)
	assert.True(t, got.DeliveryDate.Equal(shipment.DeliveryDate))

	require.NoError(t, f.repo.DeleteShipment(ctx, shipment.ID))
	_, err = f.repo.GetShipment(ctx, shipment.ID)
	assert.ErrorIs(t, err, orderrepo.ErrShipmentNotFound)
}
