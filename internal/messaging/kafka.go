package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
)

const (
	headerContentType = "content-type"
	maxRetryInterval  = 30 * time.Second
)

// messageReader is the part of *kafka.Reader the consumer relies on.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaClient struct {
	writer     *kafka.Writer
	newReader  func() messageReader
	topic      string
	retryAfter time.Duration
	logger     *zap.Logger
}

func newKafkaClient(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) *kafkaClient {
	kcfg := cfg.Messaging.Kafka
	client := &kafkaClient{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(kcfg.Brokers...),
			Topic:        kcfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Logger:       kafkaLogger{logger: logger},
			ErrorLogger:  kafkaLogger{logger: logger},
		},
		// Each Consume call joins the group as its own member, so a
		// partition is only ever read and committed by one consumer.
		newReader: func() messageReader {
			return kafka.NewReader(kafka.ReaderConfig{
				Brokers:        kcfg.Brokers,
				GroupID:        cfg.Messaging.ConsumerGroup,
				Topic:          kcfg.Topic,
				MinBytes:       kcfg.MinBytes,
				MaxBytes:       kcfg.MaxBytes,
				CommitInterval: kcfg.CommitInterval,
				Dialer: &kafka.Dialer{
					Timeout:  kcfg.ConnectTimeout,
					ClientID: kcfg.ClientID,
				},
			})
		},
		topic:      kcfg.Topic,
		retryAfter: cfg.Messaging.Workers.PollInterval,
		logger:     logger.With(zap.String("topic", kcfg.Topic)),
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.logger.Info("closing kafka client")
			return client.writer.Close()
		},
	})
	return client
}

func (k *kafkaClient) Topic() string { return k.topic }

func (k *kafkaClient) Publish(ctx context.Context, key []byte, value []byte) error {
	msg := kafka.Message{
		Key:     key,
		Value:   value,
		Headers: []kafka.Header{{Key: headerContentType, Value: []byte(ContentTypeJSON)}},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", k.topic, err)
	}
	return nil
}

// Consume reads with its own group member until ctx ends. A failing message
// is retried in place with exponential backoff and committed only once its
// handler succeeds, so later offsets of the partition never overtake it.
func (k *kafkaClient) Consume(ctx context.Context, handler Handler) error {
	reader := k.newReader()
	defer func() {
		if err := reader.Close(); err != nil {
			k.logger.Warn("closing kafka reader failed", zap.Error(err))
		}
	}()

	fetchRetry := k.backOff()
	for {
		msg, err := reader.FetchMessage(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, io.EOF):
			return fmt.Errorf("kafka reader closed: %w", err)
		case err != nil:
			wait := fetchRetry.NextBackOff()
			k.logger.Error("kafka fetch failed", zap.Error(err), zap.Duration("retry_in", wait))
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}
		fetchRetry.Reset()

		if err := k.handle(ctx, handler, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			k.logger.Warn("commit failed", zap.Error(err), zap.Int64("offset", msg.Offset))
		}
	}
}

// handle runs handler until it succeeds. It only fails when ctx ends.
func (k *kafkaClient) handle(ctx context.Context, handler Handler, msg kafka.Message) error {
	wrapped := fromKafka(msg)
	_, err := backoff.Retry(ctx,
		func() (struct{}, error) {
			return struct{}{}, handler(ctx, wrapped)
		},
		backoff.WithBackOff(k.backOff()),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			k.logger.Error("message handler failed; retrying",
				zap.Error(err),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Duration("retry_in", wait),
			)
		}),
	)
	return err
}

func (k *kafkaClient) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = k.retryAfter
	b.MaxInterval = max(k.retryAfter, maxRetryInterval)
	return b
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func fromKafka(msg kafka.Message) Message {
	out := Message{
		Topic:  msg.Topic,
		Key:    append([]byte(nil), msg.Key...),
		Value:  append([]byte(nil), msg.Value...),
		Offset: msg.Offset,
		Time:   msg.Time,
	}
	if len(msg.Headers) > 0 {
		out.Headers = make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			out.Headers[h.Key] = string(h.Value)
		}
	}
	return out
}

type kafkaLogger struct {
	logger *zap.Logger
}

func (k kafkaLogger) Printf(msg string, args ...any) {
	k.logger.Sugar().Debugf(msg, args...)
}
