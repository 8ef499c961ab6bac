// Package messaging publishes and consumes order events. Kafka is the only
// real transport; the noop client stands in when messaging is disabled.
package messaging

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
)

// ContentTypeJSON is the content-type header value attached to published messages.
const ContentTypeJSON = "application/json"

// Message is a record read from the bus.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
	Offset  int64
	Time    time.Time
}

// Handler processes one message. A non-nil error leaves it uncommitted.
type Handler func(context.Context, Message) error

// Client publishes to and consumes from a single topic. Messages that share
// a key keep their relative order.
type Client interface {
	Publish(ctx context.Context, key []byte, value []byte) error
	Consume(ctx context.Context, handler Handler) error
	Topic() string
}

// Module wires the messaging client.
var Module = fx.Provide(NewClient)

// NewClient returns the client selected by MESSAGING_DRIVER.
func NewClient(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Client, error) {
	if !cfg.Messaging.Enabled || cfg.Messaging.Driver == "noop" {
		logger.Info("messaging disabled; using noop client")
		return noopClient{topic: cfg.Messaging.Kafka.Topic}, nil
	}
	if cfg.Messaging.Driver != "kafka" {
		return nil, fmt.Errorf("unsupported messaging driver: %s", cfg.Messaging.Driver)
	}
	return newKafkaClient(lc, cfg, logger), nil
}

type noopClient struct {
	topic string
}

func (noopClient) Publish(context.Context, []byte, []byte) error { return nil }

// Consume blocks until ctx ends so a worker built on it idles cleanly.
func (noopClient) Consume(ctx context.Context, _ Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (n noopClient) Topic() string { return n.topic }
