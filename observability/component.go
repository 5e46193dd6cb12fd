package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/streamkit/component"
	"github.com/kbukum/streamkit/logger"
)

// Component owns the telemetry exporters as a lifecycle-managed component.
// Providers are created on Start only for the exporters that have an
// endpoint configured.
type Component struct {
	serviceName    string
	serviceVersion string
	cfg            Config

	mu      sync.Mutex
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *RenderMetrics
	log     *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a telemetry component.
func NewComponent(serviceName, serviceVersion string, cfg Config) *Component {
	cfg.ApplyDefaults()
	return &Component{
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
		cfg:            cfg,
		log:            logger.WithComponent("telemetry"),
	}
}

// Name returns the component name.
func (c *Component) Name() string { return "telemetry" }

// Start creates the configured providers and the render instruments.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.TracingEnabled() {
		tp, err := InitTracer(ctx, c.serviceName, c.serviceVersion, &c.cfg)
		if err != nil {
			return err
		}
		c.tracer = tp
	}
	if c.cfg.MetricsEnabled() {
		mp, err := InitMeter(ctx, c.serviceName, c.serviceVersion, &c.cfg)
		if err != nil {
			return err
		}
		c.meter = mp
	}

	metrics, err := NewRenderMetrics(Meter(c.serviceName))
	if err != nil {
		return err
	}
	c.metrics = metrics
	return nil
}

// Observer returns the OpenTelemetry render observer, or nil before Start.
func (c *Component) Observer() Observer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metrics == nil {
		return nil
	}
	return c.metrics
}

// Stop flushes and shuts down the providers.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.tracer != nil {
		if err := c.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		c.tracer = nil
	}
	if c.meter != nil {
		if err := c.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		c.meter = nil
	}
	if len(errs) > 0 {
		c.log.Warn("Telemetry shutdown incomplete", logger.Fields(logger.FieldError, stderrors.Join(errs...).Error()))
	}
	return stderrors.Join(errs...)
}

// Health reports which exporters are active.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("tracing=%t metrics=%t", c.tracer != nil, c.meter != nil),
	}
}

// Describe returns summary info for the startup display.
func (c *Component) Describe() component.Description {
	details := "prometheus /metrics"
	if c.cfg.TracingEnabled() {
		details += ", traces to " + c.cfg.Tracing.Endpoint
	}
	if c.cfg.MetricsEnabled() {
		details += ", metrics to " + c.cfg.Metrics.Endpoint
	}
	return component.Description{
		Name:    "Telemetry",
		Type:    "observability",
		Details: details,
	}
}
