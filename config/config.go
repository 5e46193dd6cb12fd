package config

import (
	"fmt"
	"time"

	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/server"
	"github.com/kbukum/streamkit/validation"
)

// DefaultStreamTimeout bounds the wait for the next item on endpoints that
// degrade to early completion.
const DefaultStreamTimeout = 100 * time.Millisecond

// StreamConfig tunes the response pipeline.
type StreamConfig struct {
	// Timeout is the longest wait for the next item before a stalled
	// producer is completed early.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// BufferSize lets event-stream producers run ahead of slow clients.
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size" validate:"gte=0,lte=1024"`
}

// Config is the streamkit service configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Stream        StreamConfig         `yaml:"stream" mapstructure:"stream"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every unset section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "streamkit"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Stream.Timeout == 0 {
		c.Stream.Timeout = DefaultStreamTimeout
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := validation.Validate(c.Stream); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	if err := validation.Validate(c.Observability); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}
