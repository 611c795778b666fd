package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"forest-ca/internal/report"
)

func plotCommand() *cli.Command {
	return &cli.Command{
		Name:      "plot",
		Usage:     "chart a saved YAML run report",
		ArgsUsage: "REPORT.yaml",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "burning.png", Usage: "chart PNG path"},
			&cli.IntFlag{Name: "width", Value: 1200, Usage: "chart width in pixels"},
			&cli.IntFlag{Name: "height", Value: 600, Usage: "chart height in pixels"},
		},
		Action: plotAction,
	}
}

func plotAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return cli.Exit("plot needs exactly one report file", 2)
	}
	in, err := os.Open(cmd.Args().First())
	if err != nil {
		return err
	}
	defer in.Close()

	rep, err := report.ReadYAML(in)
	if err != nil {
		return err
	}
	path := cmd.String("out")
	if err := writeFile(path, func(w io.Writer) error {
		return rep.WriteChart(w, cmd.Int("width"), cmd.Int("height"))
	}); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	fmt.Printf("%s: %d steps, peak %d at step %d -> %s\n", rep.Title(), rep.Steps, rep.Peak, rep.PeakStep, path)
	return nil
}
