package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment knobs.
const (
	EnvPrefix     = "HELM_"
	EnvConfigFile = "HELM_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if HELM_CONFIG is set
//  3. env (prefix HELM_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// HELM_QUEUE_SIZE -> queue_size. Map keys use a dot:
	// HELM_MATCH_WEIGHTS.STATE -> match_weights.state.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		if s == strings.TrimPrefix(EnvConfigFile, EnvPrefix) {
			return ""
		}
		return strings.ToLower(s)
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

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreDriver != DriverMemory && c.StoreDriver != DriverSQLite && c.StoreDriver != DriverPostgres:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver != DriverMemory && c.StoreDSN == "":
		return fmt.Errorf("%w: store_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
	case c.ActivityQueueSize < 0 || c.WorkerCount < 0:
		return fmt.Errorf("%w: queue_size and worker_count must not be negative", ErrInvalidConfig)
	case c.RecencyWindowDays <= 0 || c.UpcomingDefaultDays <= 0:
		return fmt.Errorf("%w: day windows must be positive", ErrInvalidConfig)
	case c.MaxMatchLimit <= 0 || c.MaxReasons <= 0:
		return fmt.Errorf("%w: max_match_limit and max_reasons must be positive", ErrInvalidConfig)
	}
	for kind, w := range c.MatchWeights {
		if w < 0 {
			return fmt.Errorf("%w: match weight %s must not be negative", ErrInvalidConfig, kind)
		}
	}
	return nil
}
