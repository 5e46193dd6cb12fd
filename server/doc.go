// Package server provides the HTTP server: a gin engine wrapped in the
// handler-level middleware stack and served with h2c.
//
// # Middleware
//
// Applied around the whole engine (server/middleware), outermost first:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation
//   - CORS: cross-origin headers and preflight answers
//   - BodySizeLimit: request body size limit
//   - RequestLogger: one log line per request with status and duration
//
// # Endpoints
//
// RegisterDefaultEndpoints adds /health, /health/live, /health/ready,
// /version and /metrics (server/endpoint).
package server
