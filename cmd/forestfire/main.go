// Command forestfire runs the forest fire cellular automaton from the
// terminal, streams it to websocket viewers, and charts finished runs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"forest-ca/internal/config"
	"forest-ca/internal/logging"
	"forest-ca/internal/sims/forestfire"
)

const version = "0.3.0"

func main() {
	// A missing .env is fine; a malformed one is not.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	app := &cli.Command{
		Name:    "forestfire",
		Usage:   "forest fire cellular automaton",
		Version: version,
		Commands: []*cli.Command{
			runCommand(),
			serveCommand(),
			plotCommand(),
			runsCommand(),
			{
				Name:  "version",
				Usage: "print the build version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Println("forestfire", version)
					return nil
				},
			},
		},
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are accepted by every subcommand that runs a simulation.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "TOML configuration file",
			Sources: cli.EnvVars("FORESTFIRE_CONFIG"),
		},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.IntFlag{Name: "width", Usage: "interior width"},
		&cli.IntFlag{Name: "height", Usage: "interior height"},
		&cli.IntFlag{Name: "steps", Usage: "number of time steps"},
		&cli.Int64Flag{Name: "seed", Usage: "random seed"},
		&cli.FloatFlag{Name: "grow-start", Usage: "initial tree probability"},
		&cli.FloatFlag{Name: "grow", Usage: "per-step tree growth probability"},
		&cli.FloatFlag{Name: "lightning", Usage: "per-step lightning probability"},
		&cli.IntFlag{Name: "tps", Usage: "steps per second, 0 = as fast as possible"},
	}
}

// loadConfig reads the TOML file and applies flag overrides on top.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	sim := &cfg.Simulation
	if cmd.IsSet("width") {
		sim.Width = cmd.Int("width")
	}
	if cmd.IsSet("height") {
		sim.Height = cmd.Int("height")
	}
	if cmd.IsSet("steps") {
		sim.Steps = cmd.Int("steps")
	}
	if cmd.IsSet("seed") {
		sim.Seed = cmd.Int64("seed")
	}
	if cmd.IsSet("grow-start") {
		sim.InitialTreeProbability = cmd.Float("grow-start")
	}
	if cmd.IsSet("grow") {
		sim.GrowProbability = cmd.Float("grow")
	}
	if cmd.IsSet("lightning") {
		sim.LightningProbability = cmd.Float("lightning")
	}
	if cmd.IsSet("tps") {
		cfg.Output.TPS = cmd.Int("tps")
		cfg.Server.TPS = cmd.Int("tps")
	}
	if cmd.IsSet("log-level") {
		cfg.Logging.Level = cmd.String("log-level")
	}
	if err := sim.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func simFields(c forestfire.Config) []zap.Field {
	return []zap.Field{
		zap.Int("width", c.Width),
		zap.Int("height", c.Height),
		zap.Int("steps", c.Steps),
		zap.Int64("seed", c.Seed),
		zap.Float64("grow_start", c.InitialTreeProbability),
		zap.Float64("grow", c.GrowProbability),
		zap.Float64("lightning", c.LightningProbability),
	}
}
