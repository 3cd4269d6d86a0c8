package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/shadergraph/pkg/shader"
)

// DefaultFile is the optional configuration file read from the working directory.
const DefaultFile = "shadergraph.toml"

// EnvPrefix prefixes environment overrides, e.g. SHADERGRAPH_MAX_NODES=5000.
const EnvPrefix = "SHADERGRAPH_"

// Config holds all configuration for the application
type Config struct {
	Version    string        `koanf:"version"`
	Workers    int           `koanf:"workers"`
	MaxNodes   int           `koanf:"max_nodes"`
	Timeout    time.Duration `koanf:"timeout"`
	Format     string        `koanf:"format"`
	Layout     bool          `koanf:"layout"`
	Verbosity  string        `koanf:"verbosity"`
	VerboseCnt int           `koanf:"verbose"`
	JSONLogs   bool          `koanf:"json_logs"`
}

// HostVersion parses the configured host version.
func (c *Config) HostVersion() (shader.Version, error) {
	return shader.ParseVersion(c.Version)
}

// Validate checks values that koanf cannot check on its own.
func (c *Config) Validate() error {
	if _, err := c.HostVersion(); err != nil {
		return fmt.Errorf("invalid version: %w", err)
	}
	switch c.Format {
	case "text", "yaml":
	default:
		return fmt.Errorf("invalid format %q: want text or yaml", c.Format)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("max_nodes must not be negative, got %d", c.MaxNodes)
	}
	return nil
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"version":   shader.DefaultVersion.String(),
		"workers":   4,
		"max_nodes": 10000,
		"timeout":   "30s",
		"format":    "text",
		"layout":    true,
		"verbosity": "",
		"verbose":   0,
		"json_logs": false,
	}
}

// LoadFile loads configuration from defaults, the file at path, environment
// variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func LoadFile(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional); a missing file is fine, a broken one is not
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// Keys keep their underscores: SHADERGRAPH_MAX_NODES -> max_nodes
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
