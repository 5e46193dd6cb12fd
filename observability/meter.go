package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/streamkit/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, serviceName, serviceVersion string, cfg *Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Metrics.Endpoint),
	}
	if cfg.Metrics.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Metrics.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Metrics.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(newResource(serviceName, serviceVersion, cfg.Environment)),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", serviceName,
		"endpoint", cfg.Metrics.Endpoint,
		"interval", cfg.Metrics.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// RenderMetrics records render outcomes as OpenTelemetry instruments.
type RenderMetrics struct {
	renders  metric.Int64Counter
	items    metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

var _ Observer = (*RenderMetrics)(nil)

// NewRenderMetrics creates the render instruments on the given meter.
func NewRenderMetrics(meter metric.Meter) (*RenderMetrics, error) {
	renders, err := meter.Int64Counter("streamkit.renders",
		metric.WithDescription("Completed response renders"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating streamkit.renders counter: %w", err)
	}

	items, err := meter.Int64Counter("streamkit.items",
		metric.WithDescription("Items written to responses"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating streamkit.items counter: %w", err)
	}

	duration, err := meter.Float64Histogram("streamkit.render.duration",
		metric.WithDescription("Duration of response renders in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating streamkit.render.duration histogram: %w", err)
	}

	active, err := meter.Int64UpDownCounter("streamkit.renders.active",
		metric.WithDescription("Renders in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating streamkit.renders.active counter: %w", err)
	}

	return &RenderMetrics{renders: renders, items: items, duration: duration, active: active}, nil
}

// RenderStarted implements Observer.
func (m *RenderMetrics) RenderStarted(ctx context.Context, _, mode string) {
	m.active.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

// RenderFinished implements Observer.
func (m *RenderMetrics) RenderFinished(ctx context.Context, ev RenderEvent) {
	mode := attribute.String("mode", ev.Mode)
	m.active.Add(ctx, -1, metric.WithAttributes(mode))
	m.renders.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", ev.Endpoint),
		mode,
		attribute.String("outcome", ev.Outcome),
	))
	m.items.Add(ctx, int64(ev.Items), metric.WithAttributes(mode))
	m.duration.Record(ctx, ev.Duration.Seconds(), metric.WithAttributes(mode))
}
