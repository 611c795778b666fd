// Package sweep evaluates many independent forest fire runs in parallel.
// Parallelism is across runs only: each run owns its grid and its seeded
// RNG, so results do not depend on the worker count.
package sweep

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"forest-ca/internal/sims/forestfire"
	pcore "forest-ca/pkg/core"
)

// ParamSet is one point of the sweep.
type ParamSet struct {
	Grow      float64
	Lightning float64
}

func (p ParamSet) String() string {
	return fmt.Sprintf("grow=%.4f lightning=%.5f", p.Grow, p.Lightning)
}

// Scenario is one seeded run of a ParamSet.
type Scenario struct {
	Params ParamSet
	Seed   int64
}

// Outcome summarises a single run.
type Outcome struct {
	Scenario    Scenario
	Peak        int
	PeakStep    int
	TotalBurned int
	// Extinct is the first step after which nothing burned again, or -1 if
	// fire was still burning at the end.
	Extinct int
}

// Result aggregates the outcomes of one ParamSet across seeds.
type Result struct {
	Params      ParamSet
	Runs        int
	MeanPeak    float64
	MeanTotal   float64
	MaxPeak     int
	ExtinctRuns int
}

// Grid expands every grow x lightning combination.
func Grid(grow, lightning []float64) []ParamSet {
	sets := make([]ParamSet, 0, len(grow)*len(lightning))
	for _, g := range grow {
		for _, l := range lightning {
			sets = append(sets, ParamSet{Grow: g, Lightning: l})
		}
	}
	return sets
}

// RunScenario plays one scenario to completion on top of base.
func RunScenario(ctx context.Context, base forestfire.Config, sc Scenario) (Outcome, error) {
	cfg := base
	cfg.GrowProbability = sc.Params.Grow
	cfg.LightningProbability = sc.Params.Lightning
	cfg.Seed = sc.Seed
	d, err := forestfire.NewDriver(cfg, pcore.NewRNG(sc.Seed), nil)
	if err != nil {
		return Outcome{}, fmt.Errorf("scenario %s seed=%d: %w", sc.Params, sc.Seed, err)
	}
	if err := d.Run(ctx); err != nil {
		return Outcome{}, err
	}
	s := d.Series()
	peak, at := s.Peak()
	return Outcome{
		Scenario:    sc,
		Peak:        peak,
		PeakStep:    at,
		TotalBurned: s.Total(),
		Extinct:     extinction(s.Values()),
	}, nil
}

func extinction(counts []int) int {
	last := len(counts) - 1
	if last < 0 || counts[last] != 0 {
		return -1
	}
	for i := last; i > 0; i-- {
		if counts[i-1] != 0 {
			return i
		}
	}
	return 0
}

// Run evaluates every ParamSet for every seed using a pool of workers and
// returns one Result per ParamSet in input order.
func Run(ctx context.Context, base forestfire.Config, sets []ParamSet, seeds []int64, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan Scenario)
	outcomes := make(chan Outcome)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				out, err := RunScenario(ctx, base, sc)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				outcomes <- out
			}
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	go func() {
		defer close(jobs)
		for _, p := range sets {
			for _, seed := range seeds {
				select {
				case jobs <- Scenario{Params: p, Seed: seed}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	byParams := make(map[ParamSet][]Outcome, len(sets))
	for out := range outcomes {
		byParams[out.Scenario.Params] = append(byParams[out.Scenario.Params], out)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(sets))
	for _, p := range sets {
		results = append(results, aggregate(p, byParams[p]))
	}
	return results, nil
}

func aggregate(p ParamSet, outs []Outcome) Result {
	r := Result{Params: p, Runs: len(outs)}
	if len(outs) == 0 {
		return r
	}
	// Outcomes arrive in completion order; sum in seed order so floating
	// point totals are reproducible.
	sort.Slice(outs, func(i, j int) bool { return outs[i].Scenario.Seed < outs[j].Scenario.Seed })
	var peak, total float64
	for _, o := range outs {
		peak += float64(o.Peak)
		total += float64(o.TotalBurned)
		if o.Peak > r.MaxPeak {
			r.MaxPeak = o.Peak
		}
		if o.Extinct >= 0 {
			r.ExtinctRuns++
		}
	}
	r.MeanPeak = peak / float64(len(outs))
	r.MeanTotal = total / float64(len(outs))
	return r
}

// Rank orders results by mean burned cells, largest first.
func Rank(results []Result) []Result {
	ranked := append([]Result(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].MeanTotal > ranked[j].MeanTotal })
	return ranked
}
