package sse

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/streamkit/component"
	"github.com/kbukum/streamkit/logger"
)

// Streams tracks the event streams currently being served.
type Streams struct {
	mu    sync.Mutex
	open  map[uint64]string
	next  uint64
	total uint64
}

// NewStreams creates an empty tracker.
func NewStreams() *Streams {
	return &Streams{open: make(map[uint64]string)}
}

// Track records an open stream and returns the func that releases it.
// The release func is safe to call more than once.
func (s *Streams) Track(name string) func() {
	s.mu.Lock()
	s.next++
	id := s.next
	s.open[id] = name
	s.total++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.open, id)
			s.mu.Unlock()
		})
	}
}

// Open returns the number of streams in flight.
func (s *Streams) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

// Total returns the number of streams served since start.
func (s *Streams) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Component exposes a stream tracker as a lifecycle-managed component so the
// number of live streams shows up in health reports.
type Component struct {
	streams *Streams
	log     *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component around a fresh tracker.
func NewComponent() *Component {
	return &Component{
		streams: NewStreams(),
		log:     logger.WithComponent("sse"),
	}
}

// Streams returns the tracker handed to renderers.
func (c *Component) Streams() *Streams { return c.streams }

// Name returns the component name.
func (c *Component) Name() string { return "sse" }

// Start is a no-op; streams are opened by requests.
func (c *Component) Start(_ context.Context) error { return nil }

// Stop reports streams still open at shutdown. They end when the HTTP
// server cancels their request contexts.
func (c *Component) Stop(_ context.Context) error {
	if n := c.streams.Open(); n > 0 {
		c.log.Warn("Event streams still open at shutdown", map[string]interface{}{
			"open": n,
		})
	}
	return nil
}

// Health returns the health status with the number of open streams.
func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d streams open", c.streams.Open()),
	}
}

// Describe returns summary info for the startup display.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Event Streams",
		Type:    "sse",
		Details: "text/event-stream responses",
	}
}
