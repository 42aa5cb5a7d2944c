// Package config handles configuration for the rngmon host tool.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath returns $XDG_CONFIG_HOME/rngmon/config.yaml or
// ~/.config/rngmon/config.yaml.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "rngmon", "config.yaml")
}

// Config is the top-level configuration.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Capture  CaptureConfig  `yaml:"capture"`
	Simulate SimulateConfig `yaml:"simulate"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DeviceConfig selects the serial port.
type DeviceConfig struct {
	// Port is a fixed port name; empty means auto-detect by VID/PID.
	Port      string `yaml:"port"`
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`
}

// CaptureConfig controls where captures go.
type CaptureConfig struct {
	OutDir string `yaml:"out_dir"`
	// SQLite is an optional database path that receives every reading.
	SQLite string `yaml:"sqlite"`
	// Bins is the histogram bucket count used by export.
	Bins int `yaml:"bins"`
}

// SimulateConfig drives the host-side simulation of the firmware loop.
type SimulateConfig struct {
	Source   string `yaml:"source"`   // "pseudo" or "jitter"
	Seed     uint64 `yaml:"seed"`     // 0 draws a random seed
	Interval uint64 `yaml:"interval"` // ticks (microseconds) between frames
	TxBuffer int    `yaml:"tx_buffer"`
	// DrainLimit bounds flush attempts per frame; 0 waits forever.
	DrainLimit int `yaml:"drain_limit"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text" or "json"
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			VendorID:  0x16c0,
			ProductID: 0x27dd,
		},
		Capture: CaptureConfig{
			OutDir: "data",
			Bins:   100,
		},
		Simulate: SimulateConfig{
			Source:   "pseudo",
			Interval: 1000,
			TxBuffer: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error. A .env file in the
// working directory, if present, is loaded into the environment first.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RNGMON_PORT"); v != "" {
		c.Device.Port = v
	}
	if v := os.Getenv("RNGMON_OUTDIR"); v != "" {
		c.Capture.OutDir = v
	}
	if v := os.Getenv("RNGMON_SQLITE"); v != "" {
		c.Capture.SQLite = v
	}
	if v := os.Getenv("RNGMON_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("RNGMON_SIM_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("RNGMON_SIM_SEED: %w", err)
		}
		c.Simulate.Seed = seed
	}
	return nil
}

// Validate checks the configuration for values the tools cannot use.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Simulate.Source) {
	case "pseudo", "jitter":
	default:
		return fmt.Errorf("simulate.source: %q (allowed: pseudo, jitter)", c.Simulate.Source)
	}
	if c.Simulate.Interval == 0 {
		return errors.New("simulate.interval must be > 0")
	}
	if c.Simulate.TxBuffer <= 0 {
		return errors.New("simulate.tx_buffer must be > 0")
	}
	if c.Capture.Bins <= 0 {
		return errors.New("capture.bins must be > 0")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: %q (allowed: text, json)", c.Logging.Format)
	}
	return nil
}
