package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/jackc/pgx/v5"
	"github.com/urfave/cli/v3"

	"forest-ca/internal/persist"
	"forest-ca/internal/report"
)

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "list runs stored in Postgres, or chart one of them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "TOML configuration file", Sources: cli.EnvVars("FORESTFIRE_CONFIG")},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of runs to list"},
			&cli.Int64Flag{Name: "chart", Usage: "chart the run with this id instead of listing"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "burning.png", Usage: "chart PNG path"},
		},
		Action: runsAction,
	}
}

func runsAction(ctx context.Context, cmd *cli.Command) error {
	if !cmd.IsSet("chart") {
		if err := checkLimit(cmd.Int("limit")); err != nil {
			return err
		}
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	repo := persist.NewRunRepo(db)

	if cmd.IsSet("chart") {
		return chartStoredRun(ctx, repo, cmd.Int64("chart"), cmd.String("out"), cfg.Output.ChartWidth, cfg.Output.ChartHeight)
	}

	runs, err := repo.ListRuns(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSIZE\tSTEPS\tSEED\tGROW\tLIGHTNING\tPEAK\tPEAK STEP\tBURNED\tCREATED")
	for _, r := range runs {
		c := r.Config
		fmt.Fprintf(tw, "%d\t%dx%d\t%d\t%d\t%g\t%g\t%d\t%d\t%d\t%s\n",
			r.ID, c.Width, c.Height, c.Steps, c.Seed, c.GrowProbability, c.LightningProbability,
			r.Peak, r.PeakStep, r.TotalBurned, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func checkLimit(limit int) error {
	if limit < 1 {
		return cli.Exit(fmt.Sprintf("--limit must be at least 1, got %d", limit), 2)
	}
	return nil
}

func chartStoredRun(ctx context.Context, repo *persist.RunRepo, id int64, path string, width, height int) error {
	run, err := repo.GetRun(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return cli.Exit(fmt.Sprintf("run %d not found", id), 1)
	}
	if err != nil {
		return err
	}
	series, err := repo.LoadSeries(ctx, id)
	if err != nil {
		return err
	}
	rep := report.FromSeries(run.Config, series)
	if err := writeFile(path, func(w io.Writer) error {
		return rep.WriteChart(w, width, height)
	}); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	fmt.Printf("run %d: %s -> %s\n", id, rep.Title(), path)
	return nil
}
