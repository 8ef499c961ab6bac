package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2023-07-10T00:00:00":       time.Date(2023, 7, 10, 0, 0, 0, 0, time.UTC),
		"2023-07-10":                time.Date(2023, 7, 10, 0, 0, 0, 0, time.UTC),
		"2023-07-10 08:15:00":       time.Date(2023, 7, 10, 8, 15, 0, 0, time.UTC),
		"2023-07-10T08:15":          time.Date(2023, 7, 10, 8, 15, 0, 0, time.UTC),
		"2023-07-10T08:15:30Z":      time.Date(2023, 7, 10, 8, 15, 30, 0, time.UTC),
		"2023-07-10T10:15:30+02:00": time.Date(2023, 7, 10, 8, 15, 30, 0, time.UTC),
		"2023-07-10T08:15:30.5":     time.Date(2023, 7, 10, 8, 15, 30, 500000000, time.UTC),
		" 2023-07-10 ":              time.Date(2023, 7, 10, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := ParseTimestamp(in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, bad := range []string{"", "10/07/2023", "2023-13-01", "July 10th", "2023-07-10T25:00:00"} {
		_, err := ParseTimestamp(bad)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, bad)
	}
}

func TestTimestampJSON(t *testing.T) {
	out, err := json.Marshal(Timestamp(time.Date(2023, 7, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2023-07-10T00:00:00"`, string(out))

	out, err = json.Marshal(Timestamp(time.Date(2023, 7, 10, 0, 0, 0, 250000000, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2023-07-10T00:00:00.250000"`, string(out))

	out, err = json.Marshal(Timestamp(time.Time{}))
	require.NoError(t, err)
	assert.Equal(t, `null`, string(out))
}

func TestOrderItemResponseProduct(t *testing.T) {
	item := &entity.OrderItem{ID: 1, OrderID: 2, ProductID: 3, Quantity: 4, Price: decimal.RequireFromString("2.50")}

	out, err := json.Marshal(NewOrderItemResponse(item))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"order_id":2,"product_id":3,"quantity":4,"price":"2.5","product":null}`, string(out))

	item.Product = &entity.Product{ID: 3, Name: "Widget", Price: decimal.RequireFromString("3"), SupplierID: 9}
	resp := NewOrderItemResponse(item)
	require.NotNil(t, resp.Product)
	assert.Equal(t, "Widget", resp.Product.Name)
	assert.Nil(t, resp.Product.Supplier)
}

func TestListMappersNeverNil(t *testing.T) {
	assert.NotNil(t, NewCustomerResponses(nil))
	assert.NotNil(t, NewOrderResponses(nil))
	assert.NotNil(t, NewOrderItemResponses(nil))
	assert.NotNil(t, NewShipmentResponses(nil))
	assert.NotNil(t, NewSupplierResponses(nil))
	assert.NotNil(t, NewProductResponses(nil))
}

func TestProductRequestAcceptsNumberOrString(t *testing.T) {
	var req ProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Widget","price":9.99,"supplier_id":1}`), &req))
	require.NotNil(t, req.Price)
	assert.Equal(t, "9.99", req.Price.String())
	assert.Nil(t, req.Stock)

	require.NoError(t, json.Unmarshal([]byte(`{"price":"12.50"}`), &req))
	assert.True(t, decimal.RequireFromString("12.5").Equal(*req.Price))
}
