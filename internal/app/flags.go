package app

import (
	"flag"
	"fmt"
	"strings"
)

// Config represents the command-line parameters for the GUI.
type Config struct {
	Sim   string
	Scale int
	TPS   int
	Seed  int64
	Set   Overrides
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "forestfire", Scale: 12, TPS: 10, Seed: 0, Set: Overrides{}}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset, 0 keeps the configured seed")
	fs.Var(c.Set, "set", "simulation parameter in key=value form (repeatable)")
}

// Overrides collects repeated key=value flags for a sim factory.
type Overrides map[string]string

func (o Overrides) String() string {
	parts := make([]string, 0, len(o))
	for k, v := range o {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (o Overrides) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	if !ok || k == "" {
		return fmt.Errorf("want key=value, got %q", value)
	}
	o[k] = v
	return nil
}
