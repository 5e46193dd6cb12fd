package config

// Defaults lists every configuration key with its default, so each one can
// be overridden from the environment even without a config file.
func Defaults() map[string]any {
	var c Config
	c.ApplyDefaults()
	return map[string]any{
		"name":                              c.Name,
		"environment":                       c.Environment,
		"version":                           c.Version,
		"debug":                             false,
		"logging.level":                     c.Logging.Level,
		"logging.format":                    c.Logging.Format,
		"logging.output":                    c.Logging.Output,
		"logging.no_color":                  c.Logging.NoColor,
		"server.host":                       c.Server.Host,
		"server.port":                       c.Server.Port,
		"server.read_timeout":               c.Server.ReadTimeout,
		"server.write_timeout":              c.Server.WriteTimeout,
		"server.idle_timeout":               c.Server.IdleTimeout,
		"server.max_body_size":              c.Server.MaxBodySize,
		"server.cors.allowed_origins":       c.Server.CORS.AllowedOrigins,
		"stream.timeout":                    c.Stream.Timeout,
		"stream.buffer_size":                c.Stream.BufferSize,
		"observability.environment":         "",
		"observability.tracing.endpoint":    "",
		"observability.tracing.insecure":    false,
		"observability.tracing.sample_rate": c.Observability.Tracing.SampleRate,
		"observability.metrics.endpoint":    "",
		"observability.metrics.insecure":    false,
		"observability.metrics.interval":    c.Observability.Metrics.Interval,
	}
}

// LoadService loads, defaults and validates the streamkit configuration.
func LoadService(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	opts = append([]LoaderOption{WithDefaults(Defaults())}, opts...)
	if err := Load("streamkit", &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
