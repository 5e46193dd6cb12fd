// Package api registers the demo endpoints: fixed word and sentence
// streams, request body transforms, a failing stream, a stalled stream
// completed by timeout, and /updates, which records what it returns in a
// shared audit sink.
package api
