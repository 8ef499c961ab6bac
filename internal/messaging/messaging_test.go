package messaging

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func TestNewClientDisabledIsNoop(t *testing.T) {
	cfg := config.Config{Messaging: config.Messaging{
		Enabled: false,
		Driver:  "kafka",
		Kafka:   config.Kafka{Topic: "orders.events"},
	}}

	client, err := NewClient(fxtest.NewLifecycle(t), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "orders.events", client.Topic())
	assert.NoError(t, client.Publish(context.Background(), []byte("order-1"), []byte("{}")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, client.Consume(ctx, func(context.Context, Message) error { return nil }), context.DeadlineExceeded)
}

func TestNewClientUnsupportedDriver(t *testing.T) {
	cfg := config.Config{Messaging: config.Messaging{Enabled: true, Driver: "nats"}}

	_, err := NewClient(fxtest.NewLifecycle(t), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewClientKafka(t *testing.T) {
	cfg := config.Config{Messaging: config.Messaging{
		Enabled:       true,
		Driver:        "kafka",
		ConsumerGroup: "orderdesk-workers",
		Kafka: config.Kafka{
			Brokers: []string{"localhost:9092"},
			Topic:   "orders.events",
		},
		Workers: config.Worker{PollInterval: time.Second},
	}}

	lc := fxtest.NewLifecycle(t)
	client, err := NewClient(lc, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	lc.RequireStart()
	defer lc.RequireStop()
	assert.Equal(t, "orders.events", client.Topic())

	kc, ok := client.(*kafkaClient)
	require.True(t, ok)
	assert.Equal(t, time.Second, kc.retryAfter)
	assert.Equal(t, "orders.events", kc.writer.Topic)
}

func TestFromKafkaCopiesHeaders(t *testing.T) {
	msg := fromKafka(kafka.Message{
		Topic:   "orders.events",
		Key:     []byte("order-9"),
		Value:   []byte(`{"type":"order.deleted"}`),
		Offset:  42,
		Headers: []kafka.Header{{Key: headerContentType, Value: []byte(ContentTypeJSON)}},
	})

	assert.Equal(t, "order-9", string(msg.Key))
	assert.Equal(t, int64(42), msg.Offset)
	assert.Equal(t, map[string]string{"content-type": ContentTypeJSON}, msg.Headers)
	assert.Nil(t, fromKafka(kafka.Message{}).Headers)
}

type scriptedReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	fetchErrs []error
	committed []int64
	closed    bool
	done      context.CancelFunc
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		return kafka.Message{}, err
	}
	if len(r.pending) == 0 {
		r.done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.pending[0]
	r.pending = r.pending[1:]
	return msg, nil
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func newScriptedClient(t *testing.T, reader *scriptedReader) *kafkaClient {
	return &kafkaClient{
		newReader:  func() messageReader { return reader },
		topic:      "orders.events",
		retryAfter: time.Millisecond,
		logger:     zaptest.NewLogger(t),
	}
}

func TestKafkaConsumeRetriesFailedMessageBeforeCommitting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &scriptedReader{
		pending: []kafka.Message{
			{Topic: "orders.events", Key: []byte("order-1"), Offset: 10},
			{Topic: "orders.events", Key: []byte("order-2"), Offset: 11},
		},
		fetchErrs: []error{errors.New("broker unavailable")},
		done:      cancel,
	}

	var seen []int64
	failures := 2
	err := newScriptedClient(t, reader).Consume(ctx, func(_ context.Context, msg Message) error {
		seen = append(seen, msg.Offset)
		if msg.Offset == 10 && failures > 0 {
			failures--
			return errors.New("cache unavailable")
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{10, 10, 10, 11}, seen)
	assert.Equal(t, []int64{10, 11}, reader.committed)
	assert.True(t, reader.closed)
}

func TestKafkaConsumeStopsWhenReaderCloses(t *testing.T) {
	reader := &scriptedReader{fetchErrs: []error{io.EOF}, done: func() {}}

	err := newScriptedClient(t, reader).Consume(context.Background(), func(context.Context, Message) error { return nil })
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, reader.closed)
}
