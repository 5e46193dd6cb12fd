// Package sse implements the text/event-stream wire format.
//
// Writer frames payloads as data-only events and flushes each one, Reader
// parses incoming event streams (request bodies posted as event streams),
// and Streams tracks the responses currently streaming.
//
// # Usage
//
//	sw, err := sse.NewWriter(w)
//	if err != nil {
//		return err
//	}
//	sw.Open(http.StatusOK)
//	_ = sw.Data([]byte("foo")) // data:foo\n\n
package sse
