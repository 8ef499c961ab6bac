package worker

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/messaging"
)

var engineMeter = otel.Meter("github.com/Additional-Code/orderdesk/worker")

// HandlerRegistration is contributed to the "worker.handlers" group by
// packages that consume a topic.
type HandlerRegistration struct {
	Topic   string
	Handler messaging.Handler
}

// Params collects dependencies via Fx.
type Params struct {
	fx.In

	Client        messaging.Client
	Logger        *zap.Logger
	Config        config.Config
	Registrations []HandlerRegistration `group:"worker.handlers"`
}

// Engine runs a fixed pool of consumers over the messaging client and routes
// each message to the handler registered for its topic.
type Engine struct {
	client        messaging.Client
	logger        *zap.Logger
	cfg           config.Config
	registrations map[string]messaging.Handler
	processed     metric.Int64Counter
	cancel        context.CancelFunc
	group         *errgroup.Group
}

// NewEngine constructs the worker Engine.
func NewEngine(p Params) (*Engine, error) {
	processed, err := engineMeter.Int64Counter("orderdesk.worker.messages",
		metric.WithDescription("Messages handled by the worker engine, by topic and outcome"),
	)
	if err != nil {
		return nil, err
	}

	reg := make(map[string]messaging.Handler, len(p.Registrations))
	for _, r := range p.Registrations {
		if r.Topic == "" || r.Handler == nil {
			continue
		}
		reg[r.Topic] = r.Handler
	}

	return &Engine{
		client:        p.Client,
		logger:        p.Logger,
		cfg:           p.Config,
		registrations: reg,
		processed:     processed,
	}, nil
}

// Module wires the engine into Fx lifecycle.
var Module = fx.Options(
	fx.Provide(NewEngine),
	fx.Invoke(func(lc fx.Lifecycle, engine *Engine) {
		lc.Append(fx.Hook{
			OnStart: engine.Start,
			OnStop:  engine.Stop,
		})
	}),
)

// Start launches the configured number of consumers and returns immediately.
// The consumers outlive ctx; Stop ends them.
func (e *Engine) Start(context.Context) error {
	workers := e.cfg.Messaging.Workers
	switch {
	case !e.cfg.Messaging.Enabled || !workers.Enabled:
		e.logger.Info("worker engine disabled")
		return nil
	case len(e.registrations) == 0:
		e.logger.Info("worker engine has no handlers; skipping")
		return nil
	}

	concurrency := max(workers.Concurrency, 1)
	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.group = &errgroup.Group{}
	for id := range concurrency {
		e.group.Go(func() error {
			return e.consume(runCtx, id)
		})
	}

	e.logger.Info("worker engine started", zap.Int("workers", concurrency))
	return nil
}

// Stop cancels the consumers and waits for in-flight handlers until ctx
// expires. It reports the first consumer that stopped with an error.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel == nil {
		return nil
	}
	e.cancel()

	done := make(chan error, 1)
	go func() { done <- e.group.Wait() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		e.logger.Info("worker engine stopped")
		return err
	}
}

// consume runs one consumer until ctx ends. Retrying failed fetches and
// handlers is the messaging client's job, so any other error it returns is
// terminal for this worker.
func (e *Engine) consume(ctx context.Context, workerID int) error {
	err := e.client.Consume(ctx, func(msgCtx context.Context, msg messaging.Message) error {
		return e.dispatch(msgCtx, workerID, msg)
	})
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	e.logger.Error("consumer stopped", zap.Error(err), zap.Int("worker", workerID))
	return fmt.Errorf("worker %d: %w", workerID, err)
}

func (e *Engine) dispatch(ctx context.Context, workerID int, msg messaging.Message) error {
	handler, ok := e.registrations[msg.Topic]
	if !ok {
		e.logger.Warn("no handler for topic", zap.String("topic", msg.Topic))
		e.record(ctx, msg.Topic, "unrouted")
		return nil
	}

	e.logger.Debug("processing message",
		zap.String("topic", msg.Topic),
		zap.ByteString("key", msg.Key),
		zap.Int("worker", workerID),
	)

	outcome := "handled"
	err := handler(ctx, msg)
	if err != nil {
		outcome = "failed"
	}
	e.record(ctx, msg.Topic, outcome)
	return err
}

func (e *Engine) record(ctx context.Context, topic, outcome string) {
	e.processed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("outcome", outcome),
	))
}
