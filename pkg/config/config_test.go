package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(nil, "")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Version != "4.1" {
		t.Errorf("version = %q, want 4.1", cfg.Version)
	}
	if cfg.Workers != 4 || cfg.MaxNodes != 10000 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shadergraph.toml")
	content := "version = \"3.6\"\nworkers = 2\nmax_nodes = 50\nformat = \"yaml\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SHADERGRAPH_WORKERS", "8")
	t.Setenv("SHADERGRAPH_MAX_NODES", "75")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max_nodes", 0, "")
	flags.String("format", "text", "")
	if err := flags.Parse([]string{"--max_nodes=99"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(flags, path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"file wins over default", cfg.Version, "3.6"},
		{"env wins over file", cfg.Workers, 8},
		{"flag wins over env", cfg.MaxNodes, 99},
		{"unchanged flag keeps file value", cfg.Format, "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadDefaultFileFromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte("workers = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := LoadFile(nil, DefaultFile)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("workers = %d, want 3 from %s", cfg.Workers, DefaultFile)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadFile(nil, filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("a missing file should fall back to defaults: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d, want default 4", cfg.Workers)
	}
}

func TestLoadBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("version = = \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(nil, path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Version: "4.1", Workers: 1, Format: "text"}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"bad version", func(c *Config) { c.Version = "four" }, false},
		{"bad format", func(c *Config) { c.Format = "json" }, false},
		{"no workers", func(c *Config) { c.Workers = 0 }, false},
		{"negative budget", func(c *Config) { c.MaxNodes = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
