// Package config loads the demo harness's topology: how many producer
// and consumer tasks to run, their priorities, the tick period, and
// message-buffer sizing. Grounded on src/deviceid.go's yaml.v3 loading
// and src/appserver.go's pflag setup in the teacher repo.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// TaskSpec describes one demo task to spawn.
type TaskSpec struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
}

// Config is the demo binary's full topology.
type Config struct {
	TickPeriod   time.Duration `yaml:"-"`
	TickPeriodMs int           `yaml:"tick_period_ms"`
	BufferLimit  int           `yaml:"buffer_limit"`
	Producers    []TaskSpec    `yaml:"producers"`
	Consumers    []TaskSpec    `yaml:"consumers"`
	Advertise    bool          `yaml:"-"`
	ConsolePath  string        `yaml:"console_path"`
}

// Default returns the topology used when no config file is given: one
// producer, one consumer, a 10ms tick, and a 256-byte message buffer.
func Default() Config {
	return Config{
		TickPeriodMs: 10,
		BufferLimit:  256,
		Producers:    []TaskSpec{{Name: "producer", Priority: 2}},
		Consumers:    []TaskSpec{{Name: "consumer", Priority: 1}},
	}
}

// Load reads a YAML topology file, falling back to Default for any
// field the file doesn't set.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// LoadFile opens path and decodes it via Load. An empty path returns
// Default unchanged.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Flags registers the demo binary's pflag overrides and returns a
// closure that applies whatever was actually set on top of cfg.
func Flags(fs *pflag.FlagSet) func(*Config) {
	configPath := fs.StringP("config", "c", "", "topology YAML file")
	tickMs := fs.Int("tick-ms", 0, "override tick period in milliseconds")
	bufLimit := fs.Int("buffer-limit", 0, "override message buffer size in bytes")
	advertise := fs.Bool("advertise", false, "advertise the debug console over mDNS")
	consolePath := fs.String("console", "", "path to expose the debug console pty at")

	return func(cfg *Config) {
		if *configPath != "" {
			loaded, err := LoadFile(*configPath)
			if err == nil {
				*cfg = loaded
			}
		}
		if *tickMs > 0 {
			cfg.TickPeriodMs = *tickMs
		}
		if *bufLimit > 0 {
			cfg.BufferLimit = *bufLimit
		}
		cfg.Advertise = *advertise
		if *consolePath != "" {
			cfg.ConsolePath = *consolePath
		}
		cfg.TickPeriod = time.Duration(cfg.TickPeriodMs) * time.Millisecond
	}
}
