// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - External errors are wrapped with ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the completion store: sqlite, mysql, postgresql or memory.
	StoreBackend string `koanf:"store_backend"`

	// StoreDSN is the backend data source name. Ignored by the memory backend.
	StoreDSN string `koanf:"store_dsn"`

	// PoolSize bounds open database connections.
	PoolSize int `koanf:"pool_size"`

	// PoolWaitTimeoutMS bounds how long a request queues for a connection.
	PoolWaitTimeoutMS int `koanf:"pool_wait_timeout_ms"`

	// MetricsIntervalMS sets how often pool and system gauges are refreshed.
	MetricsIntervalMS int `koanf:"metrics_interval_ms"`

	// MetricsNamespace and MetricsSubsystem prefix every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsEnabled turns collection off without removing /metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		StoreBackend:      "sqlite",
		StoreDSN:          "psyscale.db",
		PoolSize:          5,
		PoolWaitTimeoutMS: 2000,
		MetricsIntervalMS: 5000,
		MetricsNamespace:  "psyscale",
		MetricsSubsystem:  "statistics",
		MetricsEnabled:    true,
	}
}

// PoolWaitTimeout returns PoolWaitTimeoutMS as a duration.
func (c *Config) PoolWaitTimeout() time.Duration {
	return time.Duration(c.PoolWaitTimeoutMS) * time.Millisecond
}

// MetricsInterval returns MetricsIntervalMS as a duration.
func (c *Config) MetricsInterval() time.Duration {
	return time.Duration(c.MetricsIntervalMS) * time.Millisecond
}
