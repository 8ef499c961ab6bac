package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	"github.com/Additional-Code/orderdesk/internal/testutil"
)

func newEngine(t *testing.T, client messaging.Client, cfg config.Config, regs ...HandlerRegistration) *Engine {
	t.Helper()
	engine, err := NewEngine(Params{
		Client:        client,
		Logger:        testutil.Logger(t),
		Config:        cfg,
		Registrations: regs,
	})
	require.NoError(t, err)
	return engine
}

func TestEngineDispatchesByTopic(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.Messaging.Workers = config.Worker{Enabled: true, Concurrency: 1}

	publisher := testutil.NewPublisher(cfg.Messaging.Kafka.Topic)
	require.NoError(t, publisher.Publish(context.Background(), []byte("order-1"), []byte(`{"type":"order.created","id":1}`)))
	require.NoError(t, publisher.Publish(context.Background(), []byte("order-2"), []byte(`{"type":"order.created","id":2}`)))

	var handled atomic.Int32
	engine := newEngine(t, publisher, cfg,
		HandlerRegistration{Topic: cfg.Messaging.Kafka.Topic, Handler: func(context.Context, messaging.Message) error {
			handled.Add(1)
			return nil
		}},
		HandlerRegistration{Topic: "", Handler: func(context.Context, messaging.Message) error { return nil }},
	)
	assert.Len(t, engine.registrations, 1)

	require.NoError(t, engine.Start(context.Background()))
	require.Eventually(t, func() bool { return handled.Load() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, engine.Stop(context.Background()))
}

func TestEngineDisabled(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.Messaging.Workers = config.Worker{Enabled: false, Concurrency: 2}

	engine := newEngine(t, testutil.NewPublisher("orders.events"), cfg,
		HandlerRegistration{Topic: "orders.events", Handler: func(context.Context, messaging.Message) error { return nil }},
	)
	require.NoError(t, engine.Start(context.Background()))
	assert.Nil(t, engine.cancel)
	assert.NoError(t, engine.Stop(context.Background()))
}

func TestDispatchUnroutedAndFailures(t *testing.T) {
	cfg := testutil.Config(t)
	boom := errors.New("boom")
	engine := newEngine(t, testutil.NewPublisher("orders.events"), cfg,
		HandlerRegistration{Topic: "orders.events", Handler: func(context.Context, messaging.Message) error { return boom }},
	)

	assert.NoError(t, engine.dispatch(context.Background(), 0, messaging.Message{Topic: "other"}))
	assert.ErrorIs(t, engine.dispatch(context.Background(), 0, messaging.Message{Topic: "orders.events"}), boom)
}

type closedClient struct {
	calls atomic.Int32
}

func (c *closedClient) Publish(context.Context, []byte, []byte) error { return nil }

func (c *closedClient) Consume(context.Context, messaging.Handler) error {
	c.calls.Add(1)
	return errors.New("kafka reader closed")
}

func (c *closedClient) Topic() string { return "orders.events" }

func TestEngineSurfacesTerminalConsumerErrors(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.Messaging.Workers = config.Worker{Enabled: true, Concurrency: 2}

	client := &closedClient{}
	engine := newEngine(t, client, cfg,
		HandlerRegistration{Topic: "orders.events", Handler: func(context.Context, messaging.Message) error { return nil }},
	)

	require.NoError(t, engine.Start(context.Background()))
	require.Eventually(t, func() bool { return client.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	err := engine.Stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka reader closed")
	assert.Equal(t, int32(2), client.calls.Load(), "consumers are not restarted")
}
