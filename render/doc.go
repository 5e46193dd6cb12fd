// Package render writes item pipelines to HTTP responses in a negotiated
// mode.
//
// AggregateJSON and PlainConcat collect the whole sequence first and answer
// with a complete body, or with an empty 500 when the sequence fails.
// EventStream writes each item as a data frame as soon as it is pulled, so
// a failure midway leaves the frames already sent and ends the response
// early. Every render is traced and reported to the configured observers.
package render
