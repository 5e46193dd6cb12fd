package component

import "context"

// Component is one started-and-stopped piece of streamkit. The registry
// starts components in registration order and stops them in reverse.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// HealthStatus is the coarse state reported by Health.
type HealthStatus string

// Health states. Degraded components still serve traffic.
const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is a component's answer to a health probe. It is serialized as
// part of the /health response.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Description is a component's line in the startup summary.
// An empty Name falls back to the component's registered name, and a zero
// Port is not printed.
type Description struct {
	Name    string
	Type    string
	Details string
	Port    int
}

// Describable components appear in the startup summary.
type Describable interface {
	Describe() Description
}

// Route is one mounted HTTP route as listed at startup.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider components list the routes they serve.
type RouteProvider interface {
	Routes() []Route
}
