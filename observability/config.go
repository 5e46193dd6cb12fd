package observability

import "time"

// Config configures telemetry export. Exporters stay disabled until an
// endpoint is set; Prometheus metrics are always served on /metrics.
type Config struct {
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Tracing     TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics     MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// MetricsConfig configures the OTLP metric exporter.
type MetricsConfig struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 15 * time.Second
	}
}

// TracingEnabled reports whether spans are exported.
func (c *Config) TracingEnabled() bool { return c.Tracing.Endpoint != "" }

// MetricsEnabled reports whether OTLP metrics are exported.
func (c *Config) MetricsEnabled() bool { return c.Metrics.Endpoint != "" }
