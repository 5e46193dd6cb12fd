// Package audit provides the ordered, append-only container that passenger
// subscribers record items into.
package audit

import (
	"context"
	"sync"
)

// Sink is an append-only ordered collection of items, safe for concurrent
// use. Items appended by one request are visible to every later reader until
// Reset is called.
type Sink[T any] struct {
	mu    sync.RWMutex
	items []T
}

// NewSink creates an empty sink.
func NewSink[T any]() *Sink[T] {
	return &Sink[T]{}
}

// Append records items in order.
func (s *Sink[T]) Append(items ...T) {
	s.mu.Lock()
	s.items = append(s.items, items...)
	s.mu.Unlock()
}

// Record appends a single item. It has the shape of a pipeline subscriber.
func (s *Sink[T]) Record(_ context.Context, item T) error {
	s.Append(item)
	return nil
}

// Items returns a copy of the recorded items.
func (s *Sink[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of recorded items.
func (s *Sink[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reset discards every recorded item.
func (s *Sink[T]) Reset() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}
