package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"forest-ca/internal/config"
	"forest-ca/internal/core"
	"forest-ca/internal/persist"
	"forest-ca/internal/render"
	"forest-ca/internal/report"
	"forest-ca/internal/sims/forestfire"
	pcore "forest-ca/pkg/core"
)

func runCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "glyphs", Usage: "ascii or emoji"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "do not print the grid every step"},
		&cli.StringFlag{Name: "chart", Usage: "write the burning chart PNG here"},
		&cli.StringFlag{Name: "report", Usage: "write the YAML run report here"},
		&cli.StringFlag{Name: "frame", Usage: "write the final grid PNG here"},
		&cli.BoolFlag{Name: "save", Usage: "store the run in Postgres"},
	)
	return &cli.Command{
		Name:   "run",
		Usage:  "play a simulation in the terminal and report the burning count",
		Flags:  flags,
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := &cfg.Output
	if cmd.IsSet("glyphs") {
		out.Glyphs = cmd.String("glyphs")
	}
	if cmd.IsSet("quiet") {
		out.Quiet = cmd.Bool("quiet")
	}
	if cmd.IsSet("chart") {
		out.ChartPath = cmd.String("chart")
	}
	if cmd.IsSet("report") {
		out.ReportPath = cmd.String("report")
	}
	if cmd.IsSet("frame") {
		out.FramePath = cmd.String("frame")
	}
	if cmd.IsSet("save") {
		cfg.Database.Enabled = cmd.Bool("save")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := cfg.Simulation
	d, err := forestfire.NewDriver(sim, pcore.NewRNG(sim.Seed), log)
	if err != nil {
		return err
	}
	log.Info("simulation started", simFields(sim)...)

	var observers []forestfire.Observer
	if !out.Quiet {
		glyphs, err := render.GlyphsByName(out.Glyphs)
		if err != nil {
			return err
		}
		observers = append(observers, render.NewConsole(os.Stdout, glyphs).Observer())
		pacer := core.NewFixedStep(out.TPS)
		observers = append(observers, func(forestfire.Frame) error { return pacer.Wait(ctx) })
	}

	start := time.Now()
	if err := d.Run(ctx, observers...); err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("run: %w", err)
		}
		log.Warn("simulation interrupted, reporting completed steps", zap.Int("step", d.StepCount()))
	}

	rep := report.FromDriver(d)
	log.Info("simulation finished",
		zap.Int("steps", rep.Steps),
		zap.Int("peak_burning", rep.Peak),
		zap.Int("peak_step", rep.PeakStep),
		zap.Int("total_burned", rep.TotalBurned),
		zap.Duration("elapsed", time.Since(start)))

	if err := writeOutputs(out, rep, d.Grid(), log); err != nil {
		return err
	}
	if cfg.Database.Enabled {
		// Save even after an interrupt; the signal context is already done.
		if err := saveRun(context.WithoutCancel(ctx), cfg.Database, rep, log); err != nil {
			return err
		}
	}
	return nil
}

func writeOutputs(out *config.OutputConfig, rep report.Report, final *forestfire.Grid, log *zap.Logger) error {
	if out.ReportPath != "" {
		if err := writeFile(out.ReportPath, rep.WriteYAML); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info("report written", zap.String("path", out.ReportPath))
	}
	if out.ChartPath != "" {
		err := writeFile(out.ChartPath, func(w io.Writer) error {
			return rep.WriteChart(w, out.ChartWidth, out.ChartHeight)
		})
		if err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		log.Info("chart written", zap.String("path", out.ChartPath))
	}
	if out.FramePath != "" {
		err := writeFile(out.FramePath, func(w io.Writer) error {
			return render.WritePNG(w, final, out.FrameScale)
		})
		if err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		log.Info("frame written", zap.String("path", out.FramePath))
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func saveRun(ctx context.Context, cfg config.DatabaseConfig, rep report.Report, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if _, err := persist.NewRunRepo(db).SaveRun(ctx, rep); err != nil {
		return err
	}
	return nil
}
