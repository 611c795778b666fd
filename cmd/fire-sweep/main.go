package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"forest-ca/internal/config"
	"forest-ca/internal/logging"
	"forest-ca/internal/sims/forestfire"
	"forest-ca/internal/sweep"
)

type floatList []float64

func (l *floatList) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (l *floatList) Set(value string) error {
	*l = (*l)[:0]
	for _, part := range strings.Split(value, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return err
		}
		*l = append(*l, v)
	}
	return nil
}

func main() {
	steps := flag.Int("steps", 200, "time steps per run")
	size := flag.Int("size", 28, "interior width and height")
	seeds := flag.Int("seeds", 8, "seeded runs per parameter set")
	firstSeed := flag.Int64("seed", 1337, "first seed")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	top := flag.Int("top", 10, "results to print")
	level := flag.String("log-level", "info", "log level")
	grow := floatList{0.005, 0.01, 0.02, 0.05}
	lightning := floatList{0.0001, 0.001, 0.01}
	flag.Var(&grow, "grow", "comma-separated growth probabilities")
	flag.Var(&lightning, "lightning", "comma-separated lightning probabilities")
	flag.Parse()

	log, err := logging.New(config.LoggingConfig{Level: *level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	base := forestfire.DefaultConfig()
	base.Width, base.Height, base.Steps = *size, *size, *steps

	seedList := make([]int64, *seeds)
	for i := range seedList {
		seedList[i] = *firstSeed + int64(i)
	}
	sets := sweep.Grid(grow, lightning)

	log.Info("sweeping",
		zap.Int("param_sets", len(sets)),
		zap.Int("seeds", len(seedList)),
		zap.Int("workers", *workers),
		zap.Int("steps", *steps))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := sweep.Run(ctx, base, sets, seedList, *workers)
	if err != nil {
		log.Fatal("sweep failed", zap.Error(err))
	}
	ranked := sweep.Rank(results)

	fmt.Printf("\nTop %d parameter sets by mean burned cells (elapsed %s):\n", min(*top, len(ranked)), time.Since(start).Round(time.Millisecond))
	for i := 0; i < len(ranked) && i < *top; i++ {
		r := ranked[i]
		fmt.Printf("%2d) %s meanBurned=%.1f meanPeak=%.1f maxPeak=%d extinct=%d/%d\n",
			i+1, r.Params, r.MeanTotal, r.MeanPeak, r.MaxPeak, r.ExtinctRuns, r.Runs)
	}
}
