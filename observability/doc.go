// Package observability carries streamkit's telemetry: Prometheus collectors
// served on /metrics, OpenTelemetry tracing and metric export over OTLP/HTTP,
// and the service health report.
//
// Renderers report through the Observer interface:
//
//	obs := observability.Observers{observability.PrometheusObserver{}, telemetry.Observer()}
//	obs.RenderStarted(ctx, "words", "json")
//	obs.RenderFinished(ctx, observability.RenderEvent{Endpoint: "words", Mode: "json", Outcome: observability.OutcomeSuccess})
//
// Spans are started with StartSpan and stay no-ops until InitTracer installs
// an exporting provider.
package observability
