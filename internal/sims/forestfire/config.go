package forestfire

import (
	"fmt"
	"math"
	"strconv"
)

// Config holds the immutable parameters of a forest fire run. Width and
// Height size the interior; the grid adds a one-cell border on every side.
type Config struct {
	Width  int   `toml:"width" yaml:"width" json:"width"`
	Height int   `toml:"height" yaml:"height" json:"height"`
	Steps  int   `toml:"steps" yaml:"steps" json:"steps"`
	Seed   int64 `toml:"seed" yaml:"seed" json:"seed"`

	InitialTreeProbability float64 `toml:"initial_tree_probability" yaml:"initial_tree_probability" json:"initial_tree_probability"`
	GrowProbability        float64 `toml:"grow_probability" yaml:"grow_probability" json:"grow_probability"`
	LightningProbability   float64 `toml:"lightning_probability" yaml:"lightning_probability" json:"lightning_probability"`
}

// DefaultConfig returns the classic 28x28 forest run for 200 steps.
func DefaultConfig() Config {
	return Config{
		Width:                  28,
		Height:                 28,
		Steps:                  200,
		Seed:                   1337,
		InitialTreeProbability: 0.6,
		GrowProbability:        0.01,
		LightningProbability:   0.001,
	}
}

// GridSize returns the full grid dimensions, border included.
func (c Config) GridSize() (height, width int) { return c.Height + 2, c.Width + 2 }

// Validate rejects non-positive sizes, negative step counts and
// probabilities outside [0, 1].
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("interior %dx%d must be positive: %w", c.Width, c.Height, ErrInvalidConfig)
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps %d must not be negative: %w", c.Steps, ErrInvalidConfig)
	}
	probs := []struct {
		name string
		v    float64
	}{
		{"initial_tree_probability", c.InitialTreeProbability},
		{"grow_probability", c.GrowProbability},
		{"lightning_probability", c.LightningProbability},
	}
	for _, p := range probs {
		if math.IsNaN(p.v) || p.v < 0 || p.v > 1 {
			return fmt.Errorf("%s %v outside [0,1]: %w", p.name, p.v, ErrInvalidConfig)
		}
	}
	return nil
}

// FromMap populates a Config from flag-style key/value pairs. Unparseable
// values keep their defaults; range checks are left to Validate.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Height = parsed
		}
	}
	if v, ok := cfg["steps"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Steps = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["grow_start"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.InitialTreeProbability = parsed
		}
	}
	if v, ok := cfg["grow"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.GrowProbability = parsed
		}
	}
	if v, ok := cfg["lightning"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.LightningProbability = parsed
		}
	}
	return c
}
