// Package config loads the probing configuration: probe timeout, tick
// interval, campaign duration and the selected endpoint groups. Values come
// from an optional YAML file, with the path taken from the environment; a
// local .env file is overlaid onto the environment first.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/netverdict/netverdict/internal/groups"
)

const (
	envConfigPath     = "NETVERDICT_CONFIG"
	DefaultConfigPath = "netverdict.yaml"
)

type Config struct {
	Probe    ProbeConfig    `yaml:"probe"`
	Campaign CampaignConfig `yaml:"campaign"`
	Output   OutputConfig   `yaml:"output"`
}

type ProbeConfig struct {
	TimeoutSec float64 `yaml:"timeout_sec"`
	Privileged bool    `yaml:"privileged"`
}

type CampaignConfig struct {
	TickIntervalSec float64 `yaml:"tick_interval_sec"`
	DurationMinutes int     `yaml:"duration_minutes"`
	Region          string  `yaml:"region"`
	// Service narrows reference campaigns to one named service. Empty
	// selects the full reference set.
	Service    string `yaml:"service"`
	Concurrent bool   `yaml:"concurrent"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the built-in configuration: 3s probe timeout, 1s tick,
// 5 minute campaigns against the default region, exports to the working
// directory.
func Default() Config {
	return Config{
		Probe:    ProbeConfig{TimeoutSec: 3},
		Campaign: CampaignConfig{TickIntervalSec: 1, DurationMinutes: 5, Region: groups.DefaultRegion},
		Output:   OutputConfig{Dir: "."},
	}
}

// Load reads a YAML config file and fills unset values with defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.applyDefaults()

	if _, err := groups.Region(cfg.Campaign.Region); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	if cfg.Campaign.Service != "" {
		if _, err := groups.Service(cfg.Campaign.Service); err != nil {
			return cfg, fmt.Errorf("config %q: %w", path, err)
		}
	}
	return cfg, nil
}

// LoadFromEnv resolves the config path from the environment, overlaying a
// local .env file first. A missing config file is not an error: the
// defaults apply.
func LoadFromEnv() (Config, error) {
	_ = godotenv.Load()

	path := os.Getenv(envConfigPath)
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Probe.TimeoutSec <= 0 {
		c.Probe.TimeoutSec = d.Probe.TimeoutSec
	}
	if c.Campaign.TickIntervalSec <= 0 {
		c.Campaign.TickIntervalSec = d.Campaign.TickIntervalSec
	}
	if c.Campaign.DurationMinutes <= 0 {
		c.Campaign.DurationMinutes = d.Campaign.DurationMinutes
	}
	if c.Campaign.Region == "" {
		c.Campaign.Region = d.Campaign.Region
	}
	if c.Output.Dir == "" {
		c.Output.Dir = d.Output.Dir
	}
}

func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probe.TimeoutSec * float64(time.Second))
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Campaign.TickIntervalSec * float64(time.Second))
}

func (c Config) CampaignDuration() time.Duration {
	return time.Duration(c.Campaign.DurationMinutes) * time.Minute
}
