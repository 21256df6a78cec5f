// Package config loads tracker configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Instrument struct {
		Symbol      string `yaml:"symbol"`       // tracked ETF, e.g. "SPY"
		IndexSymbol string `yaml:"index_symbol"` // benchmark index, e.g. "^GSPC"
	} `yaml:"instrument"`

	NAV struct {
		// ScalingFactor maps the index level to the fund share price.
		// SPY trades near 1/10 of the S&P 500 level.
		ScalingFactor float64 `yaml:"scaling_factor"`
		// NoiseStdDev is the relative stddev of the synthetic noise on the
		// NAV estimate. Zero disables noise.
		NoiseStdDev float64 `yaml:"noise_stddev"`
	} `yaml:"nav"`

	Tracker struct {
		BufferCapacity    int           `yaml:"buffer_capacity"`     // samples kept (3600 ≈ 1h at 1/s)
		PollInterval      time.Duration `yaml:"poll_interval"`       // scheduler cadence
		MinUpdateInterval time.Duration `yaml:"min_update_interval"` // gate between appended samples
	} `yaml:"tracker"`

	Server struct {
		ListenAddr  string `yaml:"listen_addr"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`

	Redis struct {
		Addr     string `yaml:"addr"` // empty disables the sample mirror
		Password string `yaml:"password"`
	} `yaml:"redis"`

	LogLevel string `yaml:"log_level"`
}

// minPollInterval floors the scheduler cadence to bound CPU and upstream
// load under misconfiguration.
const minPollInterval = 100 * time.Millisecond

// Load reads config from a YAML file (missing file is fine), applies
// environment variable overrides, then fills defaults and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Instrument.Symbol = getEnv("TRACKER_SYMBOL", cfg.Instrument.Symbol)
	cfg.Instrument.IndexSymbol = getEnv("TRACKER_INDEX_SYMBOL", cfg.Instrument.IndexSymbol)
	cfg.Server.ListenAddr = getEnv("LISTEN_ADDR", cfg.Server.ListenAddr)
	cfg.Server.MetricsAddr = getEnv("METRICS_ADDR", cfg.Server.MetricsAddr)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("TRACKER_BUFFER_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Tracker.BufferCapacity = n
		}
	}
	if v := os.Getenv("TRACKER_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Tracker.PollInterval = d
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Instrument.Symbol == "" {
		cfg.Instrument.Symbol = "SPY"
	}
	if cfg.Instrument.IndexSymbol == "" {
		cfg.Instrument.IndexSymbol = "^GSPC"
	}
	if cfg.NAV.ScalingFactor == 0 {
		cfg.NAV.ScalingFactor = 0.1
	}
	if cfg.NAV.NoiseStdDev == 0 {
		cfg.NAV.NoiseStdDev = 0.001
	}
	if cfg.Tracker.BufferCapacity == 0 {
		cfg.Tracker.BufferCapacity = 3600
	}
	if cfg.Tracker.PollInterval == 0 {
		cfg.Tracker.PollInterval = time.Second
	}
	if cfg.Tracker.PollInterval < minPollInterval {
		cfg.Tracker.PollInterval = minPollInterval
	}
	if cfg.Tracker.MinUpdateInterval == 0 {
		cfg.Tracker.MinUpdateInterval = time.Second
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.MetricsAddr == "" {
		cfg.Server.MetricsAddr = ":9091"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if c.Tracker.BufferCapacity < 1 {
		return fmt.Errorf("config: buffer_capacity must be positive, got %d", c.Tracker.BufferCapacity)
	}
	if c.NAV.ScalingFactor <= 0 {
		return fmt.Errorf("config: scaling_factor must be positive, got %v", c.NAV.ScalingFactor)
	}
	if c.NAV.NoiseStdDev < 0 {
		return fmt.Errorf("config: noise_stddev must not be negative, got %v", c.NAV.NoiseStdDev)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
