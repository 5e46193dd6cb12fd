// Package bootstrap runs a streamkit service through its lifecycle.
//
// An App owns the component registry. Run starts every component in
// registration order, runs the configure callbacks that mount routes, checks
// readiness, prints a startup summary and then blocks until SIGINT, SIGTERM
// or context cancellation. Shutdown runs the stop hooks and stops the
// components in reverse order within the graceful timeout.
package bootstrap
