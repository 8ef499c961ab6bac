// Package observability builds the OpenTelemetry tracer and meter providers
// and, for the prometheus exporter, the scrape handler mounted by the HTTP
// server.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	stdoutmetric "go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
)

const (
	serviceVersion      = "0.1.0"
	shutdownTimeout     = 10 * time.Second
	exporterDialTimeout = 10 * time.Second
	stdoutMetricPeriod  = 30 * time.Second
)

// Manager owns the tracer and meter providers. They become the otel globals
// on start, so tracers and meters obtained earlier through otel.Tracer and
// otel.Meter begin exporting from that point.
type Manager struct {
	cfg            config.Observability
	logger         *zap.Logger
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metricsHandler http.Handler
}

// Module exposes the observability manager to Fx.
var Module = fx.Provide(NewManager)

// NewManager builds the providers enabled in cfg and registers their
// installation and shutdown with the lifecycle.
func NewManager(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*Manager, error) {
	ctx := context.Background()
	res, err := newResource(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("observability resource: %w", err)
	}

	m := &Manager{cfg: cfg.Observability, logger: logger}
	if m.cfg.EnableTracing {
		if err := m.setupTracing(ctx, res); err != nil {
			return nil, err
		}
	}
	if m.cfg.EnableMetrics {
		if err := m.setupMetrics(res); err != nil {
			return nil, err
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			m.install()
			return nil
		},
		OnStop: m.shutdown,
	})
	return m, nil
}

// TracingEnabled reports whether a tracer provider was built.
func (m *Manager) TracingEnabled() bool { return m.tracerProvider != nil }

// MetricsEnabled reports whether a meter provider was built.
func (m *Manager) MetricsEnabled() bool { return m.meterProvider != nil }

// MetricsHandler returns the Prometheus scrape handler, or nil for other exporters.
func (m *Manager) MetricsHandler() http.Handler { return m.metricsHandler }

func (m *Manager) PrometheusPath() string { return m.cfg.PrometheusPath }

func newResource(ctx context.Context, cfg config.Observability) (*sdkresource.Resource, error) {
	return sdkresource.New(ctx,
		sdkresource.WithFromEnv(),
		sdkresource.WithHost(),
		sdkresource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("service.environment", cfg.Environment),
		),
	)
}

func (m *Manager) install() {
	if m.tracerProvider != nil {
		otel.SetTracerProvider(m.tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}
	if m.meterProvider != nil {
		otel.SetMeterProvider(m.meterProvider)
	}
}

func (m *Manager) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if m.tracerProvider != nil {
		errs = append(errs, m.tracerProvider.Shutdown(ctx))
	}
	if m.meterProvider != nil {
		errs = append(errs, m.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (m *Manager) setupTracing(ctx context.Context, res *sdkresource.Resource) error {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch strings.ToLower(m.cfg.TraceExporter) {
	case "", "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		exporter, err = m.otlpExporter(ctx)
	default:
		m.logger.Warn("unsupported trace exporter; tracing disabled", zap.String("exporter", m.cfg.TraceExporter))
		return nil
	}
	if err != nil {
		return fmt.Errorf("trace exporter: %w", err)
	}

	m.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return nil
}

func (m *Manager) otlpExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if m.cfg.TraceEndpoint == "" {
		return nil, errors.New("OBS_OTLP_ENDPOINT must be set for otlp exporter")
	}
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(m.cfg.TraceEndpoint)}
	if m.cfg.TraceInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()
	return otlptracegrpc.New(ctx, opts...)
}

func (m *Manager) setupMetrics(res *sdkresource.Resource) error {
	var reader sdkmetric.Reader
	switch strings.ToLower(m.cfg.MetricsExporter) {
	case "prometheus":
		// A private registry keeps repeated managers (tests, CLI subcommands)
		// from colliding on the global default registerer.
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("prometheus exporter: %w", err)
		}
		reader = exporter
		m.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	case "stdout":
		exporter, err := stdoutmetric.New(stdoutmetric.WithPrettyPrint(), stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			return fmt.Errorf("stdout metric exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(stdoutMetricPeriod))
	default:
		m.logger.Warn("unsupported metrics exporter; metrics disabled", zap.String("exporter", m.cfg.MetricsExporter))
		return nil
	}

	m.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	return nil
}
