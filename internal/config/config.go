// Package config defines service configuration and its layered loader.
package config

import (
	"runtime"
)

// Store drivers accepted by StoreDriver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the repository backend: memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is passed to the SQL driver; ignored for memory.
	StoreDSN string `koanf:"store_dsn"`

	// SeedFile optionally points at a YAML fixture loaded on start.
	SeedFile string `koanf:"seed_file"`

	// ActivityQueueSize bounds the in-memory activity queue.
	ActivityQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of activity publishers.
	WorkerCount int `koanf:"worker_count"`

	// IdempotencyCacheSize caps remembered Idempotency-Key values.
	IdempotencyCacheSize int `koanf:"idempotency_cache_size"`

	// MatchWeights overrides per-constraint scoring weights keyed by reason kind.
	MatchWeights map[string]float64 `koanf:"match_weights"`

	// MaxReasons caps the reasons surfaced on a match result.
	MaxReasons int `koanf:"max_reasons"`

	// RecencyWindowDays defines "recently active" for discovery.
	RecencyWindowDays int `koanf:"recency_window_days"`

	// UpcomingDefaultDays is the calendar look-ahead when the caller gives none.
	UpcomingDefaultDays int `koanf:"upcoming_default_days"`

	// MaxMatchLimit caps ?limit on ranking endpoints.
	MaxMatchLimit int `koanf:"max_match_limit"`

	// NATSURL enables activity publishing to NATS when set.
	NATSURL string `koanf:"nats_url"`

	// NATSSubjectPrefix prefixes every published subject.
	NATSSubjectPrefix string `koanf:"nats_subject_prefix"`

	// MCPEnabled mounts the MCP tool server.
	MCPEnabled bool `koanf:"mcp_enabled"`

	// MCPPath is the mount point of the MCP handler.
	MCPPath string `koanf:"mcp_path"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		StoreDriver:          DriverMemory,
		ActivityQueueSize:    10_000,
		WorkerCount:          runtime.NumCPU(),
		IdempotencyCacheSize: 50_000,
		MatchWeights:         map[string]float64{},
		MaxReasons:           3,
		RecencyWindowDays:    14,
		UpcomingDefaultDays:  14,
		MaxMatchLimit:        100,
		NATSSubjectPrefix:    "helm.recruiting",
		MCPPath:              "/mcp",
	}
}
