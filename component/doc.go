// Package component defines the lifecycle interfaces of streamkit's
// long-lived parts and the Registry that starts, stops and health-checks
// them in a deterministic order.
package component
