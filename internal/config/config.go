// Package config handles quarry server configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents a quarry configuration file.
type Config struct {
	// Schema is the path to the schema definition file.
	Schema string `toml:"schema"`

	// Data configures where the query root comes from.
	Data DataConfig `toml:"data"`

	// Server configures the HTTP endpoint.
	Server ServerConfig `toml:"server"`

	// Tracing configures the optional OTLP exporter.
	Tracing TracingConfig `toml:"tracing"`
}

// DataConfig selects the data source backing queries.
type DataConfig struct {
	// File is a YAML or JSON document holding the root object.
	File string `toml:"file"`

	// SQLite is a path to a SQLite database; its tables back the
	// query type's list fields. Mutually exclusive with File.
	SQLite string `toml:"sqlite"`
}

// ServerConfig configures the HTTP endpoint.
type ServerConfig struct {
	// Addr is the listen address (defaults to ":8080").
	Addr string `toml:"addr"`

	// Pretty enables indented JSON responses.
	Pretty bool `toml:"pretty"`

	// Timeout is the per-request timeout (e.g. "10s").
	Timeout duration `toml:"timeout"`

	// MaxBodyBytes limits POST body size. 0 means unlimited.
	MaxBodyBytes int64 `toml:"max_body_bytes"`

	// AllowedOrigins enables CORS for the listed origins ("*" for any).
	AllowedOrigins []string `toml:"allowed_origins"`
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	// Endpoint is the OTLP gRPC endpoint. Empty disables tracing.
	Endpoint string `toml:"endpoint"`

	// Service is the reported service name (defaults to "quarry").
	Service string `toml:"service"`
}

// duration wraps time.Duration so TOML can carry "10s" style strings.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// Value returns the wrapped time.Duration.
func (d duration) Value() time.Duration { return time.Duration(d) }

// Default returns a configuration with the built-in defaults applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    ":8080",
			Timeout: duration(10 * time.Second),
		},
		Tracing: TracingConfig{Service: "quarry"},
	}
}

// Load reads a TOML configuration file, applying defaults for fields the
// file leaves unset.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Data.File != "" && c.Data.SQLite != "" {
		return fmt.Errorf("data.file and data.sqlite are mutually exclusive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}
