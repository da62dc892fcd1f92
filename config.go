package gfxcmd

import (
	"errors"
	"fmt"
	"io"
	"math/bits"

	"gopkg.in/yaml.v3"
)

// Configuration errors.
var (
	// ErrInvalidConfig is returned by Validate and LoadConfig for out of range values.
	ErrInvalidConfig = errors.New("gfxcmd: invalid config")
)

// Default sizing values.
const (
	// DefaultPoolMultiplier scales the size class of ordinary record kinds.
	DefaultPoolMultiplier = 1 << 10

	// DefaultHighFrequencyMultiplier scales the size class of kinds that are
	// issued many times per frame (bind-resources, draw).
	DefaultHighFrequencyMultiplier = 1 << 13

	// DefaultRingLength is the number of in-flight copies of ring-buffered resources.
	DefaultRingLength = 3

	// DefaultScratchCapacity is the initial number of sub-draw entries in
	// the multi-draw scratch arrays.
	DefaultScratchCapacity = 16
)

// Config holds process-wide sizing supplied once at start-up by the owning
// subsystem. The zero value is not valid; start from DefaultConfig.
type Config struct {
	// PoolMultiplier scales the per-kind pool size class for ordinary kinds.
	PoolMultiplier int `yaml:"pool_multiplier"`

	// HighFrequencyMultiplier scales the size class for bind-resources and draw records.
	HighFrequencyMultiplier int `yaml:"high_frequency_multiplier"`

	// RingLength is the depth of ring-buffered resources (frames in flight).
	RingLength int `yaml:"ring_length"`

	// ScratchCapacity is the initial multi-draw scratch capacity.
	ScratchCapacity int `yaml:"scratch_capacity"`

	// Workers is the number of recording goroutines. Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PoolMultiplier:          DefaultPoolMultiplier,
		HighFrequencyMultiplier: DefaultHighFrequencyMultiplier,
		RingLength:              DefaultRingLength,
		ScratchCapacity:         DefaultScratchCapacity,
	}
}

// Option configures a Config.
//
// Example:
//
//	cfg := gfxcmd.NewConfig(gfxcmd.WithRingLength(2), gfxcmd.WithWorkers(4))
type Option func(*Config)

// NewConfig returns DefaultConfig with the given options applied.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithPoolMultiplier sets the size-class multiplier for ordinary record kinds.
func WithPoolMultiplier(m int) Option {
	return func(c *Config) {
		c.PoolMultiplier = m
	}
}

// WithHighFrequencyMultiplier sets the size-class multiplier for
// bind-resources and draw records.
func WithHighFrequencyMultiplier(m int) Option {
	return func(c *Config) {
		c.HighFrequencyMultiplier = m
	}
}

// WithRingLength sets the number of frames in flight.
func WithRingLength(n int) Option {
	return func(c *Config) {
		c.RingLength = n
	}
}

// WithScratchCapacity sets the initial multi-draw scratch capacity.
func WithScratchCapacity(n int) Option {
	return func(c *Config) {
		c.ScratchCapacity = n
	}
}

// WithWorkers sets the number of recording goroutines.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// Validate reports whether all values are in range.
// Multipliers must be positive powers of two.
func (c Config) Validate() error {
	if c.PoolMultiplier <= 0 || bits.OnesCount(uint(c.PoolMultiplier)) != 1 {
		return fmt.Errorf("%w: pool_multiplier %d is not a positive power of two", ErrInvalidConfig, c.PoolMultiplier)
	}
	if c.HighFrequencyMultiplier <= 0 || bits.OnesCount(uint(c.HighFrequencyMultiplier)) != 1 {
		return fmt.Errorf("%w: high_frequency_multiplier %d is not a positive power of two", ErrInvalidConfig, c.HighFrequencyMultiplier)
	}
	if c.RingLength < 1 {
		return fmt.Errorf("%w: ring_length %d < 1", ErrInvalidConfig, c.RingLength)
	}
	if c.ScratchCapacity < 0 {
		return fmt.Errorf("%w: scratch_capacity %d < 0", ErrInvalidConfig, c.ScratchCapacity)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d < 0", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// LoadConfig decodes a YAML document on top of DefaultConfig and validates it.
// Keys that are absent keep their default values.
//
//	pool_multiplier: 1024
//	high_frequency_multiplier: 8192
//	ring_length: 3
//	scratch_capacity: 16
//	workers: 4
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("gfxcmd: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
