package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RenderBuckets spans short aggregate responses up to long-lived streams.
var RenderBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120}

var (
	// RendersTotal counts finished renders by endpoint, mode and outcome.
	RendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamkit_render_total",
			Help: "Finished renders",
		},
		[]string{"endpoint", "mode", "outcome"},
	)

	// ItemsEmittedTotal counts items written to responses by mode.
	ItemsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamkit_items_emitted_total",
			Help: "Items written to responses",
		},
		[]string{"mode"},
	)

	// RenderDuration records render duration in seconds by mode.
	RenderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamkit_render_duration_seconds",
			Help:    "Render duration",
			Buckets: RenderBuckets,
		},
		[]string{"mode"},
	)

	// StreamsActive tracks renders in flight.
	StreamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "streamkit_streams_active",
			Help: "Renders in flight",
		},
	)

	// NegotiationFailuresTotal counts requests rejected with 406.
	NegotiationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamkit_negotiation_failures_total",
			Help: "Requests with no acceptable render mode",
		},
		[]string{"endpoint"},
	)

	// AuditItemsTotal counts items recorded by audit subscribers.
	AuditItemsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streamkit_audit_items_total",
			Help: "Items recorded by audit subscribers",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RendersTotal,
		ItemsEmittedTotal,
		RenderDuration,
		StreamsActive,
		NegotiationFailuresTotal,
		AuditItemsTotal,
	)
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// PrometheusObserver records renders into the package collectors.
type PrometheusObserver struct{}

var _ Observer = PrometheusObserver{}

// RenderStarted implements Observer.
func (PrometheusObserver) RenderStarted(_ context.Context, _, _ string) {
	StreamsActive.Inc()
}

// RenderFinished implements Observer.
func (PrometheusObserver) RenderFinished(_ context.Context, ev RenderEvent) {
	StreamsActive.Dec()
	RendersTotal.WithLabelValues(ev.Endpoint, ev.Mode, ev.Outcome).Inc()
	ItemsEmittedTotal.WithLabelValues(ev.Mode).Add(float64(ev.Items))
	RenderDuration.WithLabelValues(ev.Mode).Observe(ev.Duration.Seconds())
}
