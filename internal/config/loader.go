package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/psyscale/internal/adapters/repository"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PSYSCALE_"

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = EnvPrefix + "CONFIG"

// metricNamePart matches a Prometheus namespace or subsystem.
var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if PSYSCALE_CONFIG is set
//  3. env (prefix PSYSCALE_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	// PSYSCALE_POOL_SIZE -> pool_size. Underscores are kept to match the
	// flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := repository.ParseBackend(c.StoreBackend); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("%w: pool_size must be positive, got %d", ErrInvalidConfig, c.PoolSize)
	}
	if c.PoolWaitTimeoutMS <= 0 {
		return fmt.Errorf("%w: pool_wait_timeout_ms must be positive, got %d", ErrInvalidConfig, c.PoolWaitTimeoutMS)
	}
	if c.MetricsIntervalMS <= 0 {
		return fmt.Errorf("%w: metrics_interval_ms must be positive, got %d", ErrInvalidConfig, c.MetricsIntervalMS)
	}
	if !metricNamePart.MatchString(c.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name prefix", ErrInvalidConfig, c.MetricsNamespace)
	}
	if !metricNamePart.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics_subsystem %q is not a valid metric name prefix", ErrInvalidConfig, c.MetricsSubsystem)
	}
	return nil
}
