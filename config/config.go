// Package config holds the golden model configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvgold/emu"
)

// CacheConfig configures the optional data cache model.
type CacheConfig struct {
	// Enabled turns on the data cache model.
	Enabled bool `json:"enabled"`

	// Size in bytes.
	Size int `json:"size"`

	// Associativity is the number of ways.
	Associativity int `json:"associativity"`

	// BlockSize in bytes (cache line size).
	BlockSize int `json:"block_size"`

	// HitLatency in cycles.
	HitLatency uint64 `json:"hit_latency"`

	// MissLatency in cycles.
	MissLatency uint64 `json:"miss_latency"`
}

// Config holds the machine parameters of a golden model session.
type Config struct {
	// InstWords is the instruction memory capacity in words. Default: 1024.
	InstWords int `json:"inst_words"`

	// DataWords is the data memory capacity in words. Default: 1024.
	DataWords int `json:"data_words"`

	// StrictAlignment makes misaligned LW/SW fault instead of truncating
	// the address to its word. Default: false.
	StrictAlignment bool `json:"strict_alignment"`

	// MaxSteps bounds the number of cycles. Default: 0 (no limit).
	MaxSteps uint64 `json:"max_steps"`

	// LogLevel is a logrus level name. Default: "info".
	LogLevel string `json:"log_level"`

	// Trace logs every committed instruction at debug level.
	Trace bool `json:"trace"`

	// ClockFreq is the clock of the design under test, used to report
	// simulated time. Default: 100 MHz.
	ClockFreq sim.Freq `json:"clock_freq"`

	// Cache configures the data cache model.
	Cache CacheConfig `json:"cache"`
}

// Default returns a Config with the reference machine parameters.
func Default() *Config {
	return &Config{
		InstWords: emu.DefaultMemoryWords,
		DataWords: emu.DefaultMemoryWords,
		LogLevel:  logrus.InfoLevel.String(),
		ClockFreq: 100 * sim.MHz,
		Cache: CacheConfig{
			Size:          4 * 1024,
			Associativity: 4,
			BlockSize:     16,
			HitLatency:    1,
			MissLatency:   10,
		},
	}
}

// Load loads a Config from a JSON file. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save writes a Config to a JSON file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a usable machine.
func (c *Config) Validate() error {
	if c.InstWords <= 0 {
		return fmt.Errorf("inst_words must be > 0")
	}
	if c.DataWords <= 0 {
		return fmt.Errorf("data_words must be > 0")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.ClockFreq <= 0 {
		return fmt.Errorf("clock_freq must be > 0")
	}
	if c.Cache.Enabled {
		if err := c.Cache.validate(); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

func (c CacheConfig) validate() error {
	if c.BlockSize <= 0 || c.BlockSize%4 != 0 {
		return fmt.Errorf("block_size must be a positive multiple of 4")
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be > 0")
	}
	if c.Size <= 0 || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("size must be a positive multiple of associativity * block_size")
	}
	if c.HitLatency == 0 {
		return fmt.Errorf("hit_latency must be > 0")
	}
	if c.MissLatency < c.HitLatency {
		return fmt.Errorf("miss_latency must be >= hit_latency")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// SimulatedSeconds converts a cycle count into seconds at ClockFreq.
func (c *Config) SimulatedSeconds(cycles uint64) float64 {
	return float64(cycles) / float64(c.ClockFreq)
}

// EmulatorOptions translates the configuration into emulator options.
func (c *Config) EmulatorOptions(logger *logrus.Logger) []emu.EmulatorOption {
	opts := []emu.EmulatorOption{
		emu.WithInstMemoryWords(c.InstWords),
		emu.WithDataMemoryWords(c.DataWords),
		emu.WithStrictAlignment(c.StrictAlignment),
		emu.WithMaxSteps(c.MaxSteps),
		emu.WithLogger(logger),
	}
	if c.Trace {
		opts = append(opts, emu.WithTracer(emu.NewLogTracer(logger)))
	}
	return opts
}
