package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/messaging"
	ordersvc "github.com/Additional-Code/orderdesk/internal/service/order"
	"github.com/Additional-Code/orderdesk/internal/testutil"
)

type failingStore struct {
	*testutil.MemoryCache
}

func (failingStore) Delete(context.Context, string) error { return errors.New("redis: connection refused") }

func eventMessage(t *testing.T, event ordersvc.OrderEvent) messaging.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return messaging.Message{Topic: "orders.events", Key: ordersvc.EventKey(event.ID), Value: value}
}

func TestOrderEventEvictsCache(t *testing.T) {
	cfg := testutil.Config(t)
	store := testutil.NewMemoryCache()
	require.NoError(t, store.Set(context.Background(), ordersvc.CacheKey(7), []byte(`{}`), time.Minute))

	reg := NewOrderEventsHandler(testutil.Logger(t), cfg, store)
	assert.Equal(t, "orders.events", reg.Topic)

	err := reg.Handler(context.Background(), eventMessage(t, ordersvc.OrderEvent{
		Type:       ordersvc.EventStatusChanged,
		ID:         7,
		CustomerID: 1,
		Status:     "Fulfilled",
		OccurredAt: time.Now().UTC(),
	}))
	require.NoError(t, err)
	assert.False(t, store.Has(ordersvc.CacheKey(7)))
}

func TestOrderEventSkipsBadMessages(t *testing.T) {
	store := testutil.NewMemoryCache()
	require.NoError(t, store.Set(context.Background(), ordersvc.CacheKey(3), []byte(`{}`), time.Minute))
	reg := NewOrderEventsHandler(testutil.Logger(t), testutil.Config(t), store)

	assert.NoError(t, reg.Handler(context.Background(), messaging.Message{Value: []byte("not json")}))
	assert.NoError(t, reg.Handler(context.Background(), eventMessage(t, ordersvc.OrderEvent{Type: "order.archived", ID: 3})))
	assert.True(t, store.Has(ordersvc.CacheKey(3)))
}

func TestOrderEventEvictionFailureIsRetried(t *testing.T) {
	store := failingStore{testutil.NewMemoryCache()}
	reg := NewOrderEventsHandler(testutil.Logger(t), testutil.Config(t), store)

	err := reg.Handler(context.Background(), eventMessage(t, ordersvc.OrderEvent{Type: ordersvc.EventDeleted, ID: 9}))
	assert.Error(t, err)
}
