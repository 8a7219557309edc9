package observability

import (
	"context"
	"errors"
	"time"
)

// Config is the tracing/metrics section of the gateway config.
type Config struct {
	Tracing struct {
		Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
		Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
		Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
		SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	} `yaml:"tracing" mapstructure:"tracing"`
	Metrics struct {
		Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
		Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
		Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
		Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	} `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills the OTLP endpoints and intervals.
func (c *Config) ApplyDefaults() {
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4318"
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = "localhost:4318"
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 15 * time.Second
	}
}

// Setup installs the enabled providers and returns a function shutting
// them down. With both disabled it is a no-op and the global otel
// providers stay no-op.
func Setup(ctx context.Context, cfg Config, service, version, environment string) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error

	if cfg.Tracing.Enabled {
		tp, err := InitTracer(ctx, TracerConfig{
			ServiceName:    service,
			ServiceVersion: version,
			Environment:    environment,
			Endpoint:       cfg.Tracing.Endpoint,
			Insecure:       cfg.Tracing.Insecure,
			SampleRate:     cfg.Tracing.SampleRate,
		})
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if cfg.Metrics.Enabled {
		mp, err := InitMeter(ctx, MeterConfig{
			ServiceName:    service,
			ServiceVersion: version,
			Environment:    environment,
			Endpoint:       cfg.Metrics.Endpoint,
			Insecure:       cfg.Metrics.Insecure,
			Interval:       cfg.Metrics.Interval,
		})
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	return func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}, nil
}
