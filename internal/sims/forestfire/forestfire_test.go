package forestfire

import (
	"context"
	"errors"
	"slices"
	"testing"

	pcore "forest-ca/pkg/core"
)

// scriptedSource replays fixed draws and counts how many were consumed.
type scriptedSource struct {
	t     *testing.T
	draws []float64
	n     int
}

func (s *scriptedSource) Float64() float64 {
	if s.n >= len(s.draws) {
		s.t.Fatalf("draw %d requested, only %d scripted", s.n+1, len(s.draws))
	}
	v := s.draws[s.n]
	s.n++
	return v
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func mustGrid(t *testing.T, h, w int) *Grid {
	t.Helper()
	g, err := NewGrid(h, w)
	if err != nil {
		t.Fatalf("NewGrid(%d,%d): %v", h, w, err)
	}
	return g
}

func fillInterior(t *testing.T, g *Grid, s CellState) {
	t.Helper()
	h, w := g.Dimensions()
	for r := 1; r < h-1; r++ {
		for c := 1; c < w-1; c++ {
			if err := g.Set(r, c, s); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func at(t *testing.T, g *Grid, r, c int) CellState {
	t.Helper()
	s, err := g.At(r, c)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func randomGrid(t *testing.T, h, w int, seed int64) *Grid {
	t.Helper()
	g := mustGrid(t, h, w)
	rng := pcore.NewRNG(seed).Source()
	for r := 1; r < h-1; r++ {
		for c := 1; c < w-1; c++ {
			_ = g.Set(r, c, CellState(rng.IntN(3)))
		}
	}
	return g
}

func TestGridBounds(t *testing.T) {
	g := mustGrid(t, 4, 6)
	if h, w := g.Dimensions(); h != 4 || w != 6 {
		t.Fatalf("Dimensions() = %d,%d", h, w)
	}
	if err := g.Set(3, 5, Burning); err != nil {
		t.Fatalf("Set in range: %v", err)
	}
	if s := at(t, g, 3, 5); s != Burning {
		t.Fatalf("At(3,5) = %v", s)
	}
	for _, rc := range [][2]int{{-1, 0}, {4, 0}, {0, 6}, {0, -1}} {
		if _, err := g.At(rc[0], rc[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("At%v err = %v", rc, err)
		}
		if err := g.Set(rc[0], rc[1], Tree); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("Set%v err = %v", rc, err)
		}
	}
	if err := g.Set(1, 1, CellState(9)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Set invalid state err = %v", err)
	}
	if _, err := NewGrid(0, 3); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NewGrid(0,3) err = %v", err)
	}
}

func TestHasBurningNeighbor(t *testing.T) {
	offsets := [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	for _, off := range offsets {
		g := mustGrid(t, 5, 5)
		_ = g.Set(2+off[0], 2+off[1], Burning)
		if !HasBurningNeighbor(g, 2, 2) {
			t.Fatalf("burning neighbour at offset %v not found", off)
		}
	}

	g := mustGrid(t, 5, 5)
	_ = g.Set(2, 2, Burning)
	_ = g.Set(0, 4, Burning)
	if HasBurningNeighbor(g, 2, 2) {
		t.Fatal("the cell itself must not count as a neighbour")
	}
	if !HasBurningNeighbor(g, 3, 1) {
		t.Fatal("diagonal (2,2) should be seen from (3,1)")
	}
}

func TestHasBurningNeighborRejectsBorder(t *testing.T) {
	g := mustGrid(t, 4, 4)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("recovered %v, want ErrOutOfBounds", r)
		}
	}()
	HasBurningNeighbor(g, 0, 1)
}

func TestBurningBecomesEmpty(t *testing.T) {
	src := randomGrid(t, 12, 9, 5)
	cfg := Config{GrowProbability: 1, LightningProbability: 1}
	next := Advance(src, cfg, pcore.NewRNG(1))
	h, w := src.Dimensions()
	for r := 1; r < h-1; r++ {
		for c := 1; c < w-1; c++ {
			if at(t, src, r, c) == Burning && at(t, next, r, c) != Empty {
				t.Fatalf("burning cell (%d,%d) became %v", r, c, at(t, next, r, c))
			}
		}
	}
}

func TestTreeNextToFireIgnites(t *testing.T) {
	src := randomGrid(t, 10, 10, 11)
	before := slices.Clone(src.Cells())
	next := Advance(src, Config{}, pcore.NewRNG(3))
	if !slices.Equal(before, src.Cells()) {
		t.Fatal("Advance modified its source grid")
	}
	h, w := src.Dimensions()
	for r := 1; r < h-1; r++ {
		for c := 1; c < w-1; c++ {
			if at(t, src, r, c) != Tree {
				continue
			}
			want := Tree
			if HasBurningNeighbor(src, r, c) {
				want = Burning
			}
			if got := at(t, next, r, c); got != want {
				t.Fatalf("tree (%d,%d) became %v, want %v", r, c, got, want)
			}
		}
	}
}

func TestLightningFollowsPositionalDraw(t *testing.T) {
	src := mustGrid(t, 5, 5)
	fillInterior(t, src, Tree)
	cfg := Config{LightningProbability: 0.25}
	draws := []float64{0.9, 0.24, 0.25, 0.5, 0.0, 0.99, 0.3, 0.249, 0.7}
	rng := &scriptedSource{t: t, draws: draws}

	next := Advance(src, cfg, rng)
	if rng.n != 9 {
		t.Fatalf("consumed %d draws, want one per tree", rng.n)
	}
	i := 0
	for r := 1; r <= 3; r++ {
		for c := 1; c <= 3; c++ {
			want := Tree
			if draws[i] < cfg.LightningProbability {
				want = Burning
			}
			if got := at(t, next, r, c); got != want {
				t.Fatalf("cell (%d,%d) draw %.3f became %v, want %v", r, c, draws[i], got, want)
			}
			i++
		}
	}
}

func TestNeighborIgnitionSkipsLightningDraw(t *testing.T) {
	src := mustGrid(t, 5, 5)
	fillInterior(t, src, Tree)
	_ = src.Set(2, 2, Burning)
	rng := &scriptedSource{t: t}

	Advance(src, Config{LightningProbability: 1}, rng)
	if rng.n != 0 {
		t.Fatalf("consumed %d draws; burning cells and trees beside fire draw nothing", rng.n)
	}
}

func TestDrawOrderIsRowMajor(t *testing.T) {
	// Row 1: Empty Tree Burning; rows 2-3 Empty. Only the tree at (1,2) sees
	// fire, so draws go to (1,1), then (2,1)..(3,3).
	src := mustGrid(t, 5, 5)
	_ = src.Set(1, 2, Tree)
	_ = src.Set(1, 3, Burning)
	draws := []float64{0.1, 0.9, 0.1, 0.9, 0.1, 0.9, 0.1}
	rng := &scriptedSource{t: t, draws: draws}

	next := Advance(src, Config{GrowProbability: 0.5}, rng)
	if rng.n != len(draws) {
		t.Fatalf("consumed %d draws, want %d", rng.n, len(draws))
	}
	want := [][]CellState{
		{Tree, Burning, Empty},
		{Empty, Tree, Empty},
		{Tree, Empty, Tree},
	}
	for r := range want {
		for c := range want[r] {
			if got := at(t, next, r+1, c+1); got != want[r][c] {
				t.Fatalf("cell (%d,%d) = %v, want %v", r+1, c+1, got, want[r][c])
			}
		}
	}
}

func TestBorderInvariant(t *testing.T) {
	src := randomGrid(t, 7, 8, 21)
	h, w := src.Dimensions()
	for c := 0; c < w; c++ {
		_ = src.Set(0, c, Tree)
		_ = src.Set(h-1, c, Burning)
	}
	for r := 0; r < h; r++ {
		_ = src.Set(r, 0, Burning)
		_ = src.Set(r, w-1, Tree)
	}
	configs := []Config{{}, {GrowProbability: 1, LightningProbability: 1}, {GrowProbability: 0.5, LightningProbability: 0.5}}
	for _, cfg := range configs {
		next := Advance(src, cfg, pcore.NewRNG(8))
		for r := 0; r < h; r++ {
			for c := 0; c < w; c++ {
				if src.InInterior(r, c) {
					continue
				}
				if at(t, next, r, c) != at(t, src, r, c) {
					t.Fatalf("border (%d,%d) changed under %+v", r, c, cfg)
				}
			}
		}
	}
}

func TestUpdateIsSynchronous(t *testing.T) {
	// A row of trees lit at its west end burns one cell per step.
	src := mustGrid(t, 3, 8)
	fillInterior(t, src, Tree)
	_ = src.Set(1, 1, Burning)
	g := src
	for step := 1; step <= 4; step++ {
		g = Advance(g, Config{}, pcore.NewRNG(int64(step)))
		if got := at(t, g, 1, step+1); got != Burning {
			t.Fatalf("step %d: front cell is %v", step, got)
		}
		if step+2 <= 6 && at(t, g, 1, step+2) != Tree {
			t.Fatalf("step %d: fire jumped ahead of the front", step)
		}
	}
}

func TestSample(t *testing.T) {
	g := mustGrid(t, 6, 7)
	fillInterior(t, g, Tree)
	if n := Sample(g); n != 0 {
		t.Fatalf("Sample without fire = %d", n)
	}
	fillInterior(t, g, Burning)
	if n := Sample(g); n != 4*5 {
		t.Fatalf("Sample all burning = %d, want 20", n)
	}
}

func TestEmptyForestRegrowsWithCertainGrowth(t *testing.T) {
	src := mustGrid(t, 6, 6)
	next := Advance(src, Config{GrowProbability: 1}, pcore.NewRNG(2))
	for r := 1; r <= 4; r++ {
		for c := 1; c <= 4; c++ {
			if got := at(t, next, r, c); got != Tree {
				t.Fatalf("cell (%d,%d) = %v, want tree", r, c, got)
			}
		}
	}
	if Sample(next) != 0 {
		t.Fatal("growth must not light anything")
	}
}

func TestCentreFireSpreadsToWholeInterior(t *testing.T) {
	cfg := Config{Width: 3, Height: 3, Steps: 2}
	g := mustGrid(t, 5, 5)
	fillInterior(t, g, Tree)
	_ = g.Set(2, 2, Burning)

	d, err := NewDriverFromGrid(cfg, g, pcore.NewRNG(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Step() {
		t.Fatal("first step should run")
	}
	cur := d.Grid()
	if at(t, cur, 2, 2) != Empty {
		t.Fatal("centre should burn out")
	}
	for r := 1; r <= 3; r++ {
		for c := 1; c <= 3; c++ {
			if r == 2 && c == 2 {
				continue
			}
			if at(t, cur, r, c) != Burning {
				t.Fatalf("cell (%d,%d) = %v, want burning", r, c, at(t, cur, r, c))
			}
		}
	}
	if got := d.Series().Values(); !slices.Equal(got, []int{1, 8}) {
		t.Fatalf("series = %v, want [1 8]", got)
	}

	d.Step()
	if Sample(d.Grid()) != 0 || d.Phase() != PhaseFinished {
		t.Fatalf("after step 2: burning=%d phase=%v", Sample(d.Grid()), d.Phase())
	}
}

func TestPlant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 9, 4
	cfg.InitialTreeProbability = 0.5
	rng := &scriptedSource{t: t, draws: repeat(0.4, 36)}
	rng.draws[5] = 0.6

	g := Plant(cfg, rng)
	if rng.n != 36 {
		t.Fatalf("consumed %d draws, want one per interior cell", rng.n)
	}
	if h, w := g.Dimensions(); h != 6 || w != 11 {
		t.Fatalf("planted %dx%d, want 6x11", h, w)
	}
	if at(t, g, 1, 6) != Empty || at(t, g, 1, 5) != Tree {
		t.Fatal("sixth interior cell should be the only empty one")
	}
	for c := 0; c < 11; c++ {
		if at(t, g, 0, c) != Empty || at(t, g, 5, c) != Empty {
			t.Fatal("border must be planted empty")
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	mutate := []func(*Config){
		func(c *Config) { c.Width = 0 },
		func(c *Config) { c.Height = -2 },
		func(c *Config) { c.Steps = -1 },
		func(c *Config) { c.InitialTreeProbability = 1.01 },
		func(c *Config) { c.GrowProbability = -0.1 },
		func(c *Config) { c.LightningProbability = 2 },
	}
	for i, m := range mutate {
		cfg := DefaultConfig()
		m(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("case %d: err = %v, want ErrInvalidConfig", i, err)
		}
		if _, err := NewDriver(cfg, pcore.NewRNG(1), nil); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("case %d: NewDriver err = %v", i, err)
		}
	}
}

func TestFromMap(t *testing.T) {
	c := FromMap(map[string]string{
		"w": "40", "h": "20", "steps": "12", "seed": "9",
		"grow_start": "0.3", "grow": "0.2", "lightning": "bogus",
	})
	if c.Width != 40 || c.Height != 20 || c.Steps != 12 || c.Seed != 9 {
		t.Fatalf("ints not parsed: %+v", c)
	}
	if c.InitialTreeProbability != 0.3 || c.GrowProbability != 0.2 {
		t.Fatalf("floats not parsed: %+v", c)
	}
	if c.LightningProbability != DefaultConfig().LightningProbability {
		t.Fatal("unparseable value should keep the default")
	}
}

func TestZeroStepRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 0
	d, err := NewDriver(cfg, pcore.NewRNG(cfg.Seed), nil)
	if err != nil {
		t.Fatal(err)
	}
	initial := Sample(d.Grid())
	var frames []Frame
	if err := d.Run(context.Background(), func(f Frame) error {
		frames = append(frames, f)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	s := d.Series()
	if s.Len() != 1 || s.At(0) != initial {
		t.Fatalf("series = %v, want [%d]", s.Values(), initial)
	}
	if len(frames) != 1 || frames[0].Step != 0 {
		t.Fatalf("observer saw %d frames", len(frames))
	}
	if d.Phase() != PhaseFinished {
		t.Fatalf("phase = %v", d.Phase())
	}
}

func TestDriverLifecycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height, cfg.Steps = 16, 12, 25
	cfg.LightningProbability = 0.01
	d, err := NewDriver(cfg, pcore.NewRNG(cfg.Seed), nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Phase() != PhaseInitialized || d.StepCount() != 0 || d.Series().Len() != 1 {
		t.Fatal("driver should start initialized with step 0 sampled")
	}
	d.Step()
	if d.Phase() != PhaseRunning {
		t.Fatalf("phase after one step = %v", d.Phase())
	}

	var steps []int
	err = d.Run(context.Background(), func(f Frame) error {
		steps = append(steps, f.Step)
		if f.Burning != Sample(f.Grid) {
			t.Fatalf("frame %d burning %d does not match grid", f.Step, f.Burning)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 24 || steps[0] != 2 || steps[23] != 25 {
		t.Fatalf("observer steps = %v", steps)
	}
	if d.Phase() != PhaseFinished || d.StepCount() != 25 || d.Series().Len() != 26 {
		t.Fatalf("phase=%v steps=%d len=%d", d.Phase(), d.StepCount(), d.Series().Len())
	}
	if d.Step() {
		t.Fatal("finished driver must not step")
	}
}

func TestDriverDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 60
	cfg.LightningProbability = 0.01
	run := func(seed int64) ([]int, []uint8) {
		d, err := NewDriver(cfg, pcore.NewRNG(seed), nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := d.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		return d.Series().Values(), d.Grid().Cells()
	}
	s1, g1 := run(7)
	s2, g2 := run(7)
	if !slices.Equal(s1, s2) || !slices.Equal(g1, g2) {
		t.Fatal("same seed produced different runs")
	}
	_, g3 := run(8)
	if slices.Equal(g1, g3) {
		t.Fatal("different seeds should produce different forests")
	}
}

func TestObserverWritesDoNotReachRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 30
	cfg.LightningProbability = 0.01
	run := func(observers ...Observer) ([]int, []uint8) {
		d, err := NewDriver(cfg, pcore.NewRNG(11), nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := d.Run(context.Background(), observers...); err != nil {
			t.Fatal(err)
		}
		return d.Series().Values(), d.Grid().Cells()
	}
	ignite := func(f Frame) error {
		h, w := f.Grid.Dimensions()
		for r := 1; r < h-1; r++ {
			for c := 1; c < w-1; c++ {
				if err := f.Grid.Set(r, c, Burning); err != nil {
					return err
				}
			}
		}
		return nil
	}
	wantSeries, wantGrid := run()
	gotSeries, gotGrid := run(ignite)
	if !slices.Equal(gotSeries, wantSeries) || !slices.Equal(gotGrid, wantGrid) {
		t.Fatalf("observer writes changed the run: series %v, want %v", gotSeries, wantSeries)
	}
}

func TestRunStopsBetweenSteps(t *testing.T) {
	cfg := DefaultConfig()
	d, err := NewDriver(cfg, pcore.NewRNG(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	err = d.Run(ctx, func(f Frame) error {
		if f.Step == 3 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if d.StepCount() != 3 || d.Series().Len() != 4 || d.Phase() != PhaseRunning {
		t.Fatalf("stopped at step %d (len %d, %v)", d.StepCount(), d.Series().Len(), d.Phase())
	}

	stop := errors.New("stop")
	err = d.Run(context.Background(), func(f Frame) error { return stop })
	if !errors.Is(err, stop) || d.StepCount() != 4 {
		t.Fatalf("observer error: err=%v step=%d", err, d.StepCount())
	}
}

func TestNewDriverFromGridChecksShape(t *testing.T) {
	cfg := Config{Width: 3, Height: 3}
	if _, err := NewDriverFromGrid(cfg, mustGrid(t, 4, 5), pcore.NewRNG(1), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	g := mustGrid(t, 5, 5)
	d, err := NewDriverFromGrid(cfg, g, pcore.NewRNG(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = g.Set(1, 1, Burning)
	if Sample(d.Grid()) != 0 {
		t.Fatal("driver must not share the caller's grid")
	}
}

func TestSeriesPeakAndTotal(t *testing.T) {
	var s Series
	if c, at := s.Peak(); c != 0 || at != -1 {
		t.Fatalf("empty peak = %d@%d", c, at)
	}
	for _, v := range []int{0, 3, 7, 7, 2} {
		s.Append(v)
	}
	if c, at := s.Peak(); c != 7 || at != 2 {
		t.Fatalf("peak = %d@%d, want 7@2", c, at)
	}
	if s.Total() != 19 {
		t.Fatalf("total = %d", s.Total())
	}
	vals := s.Values()
	vals[0] = 99
	if s.At(0) != 0 {
		t.Fatal("Values must return a copy")
	}
}

func TestForestSim(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height, cfg.Steps = 10, 6, 3
	f, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if f.Name() != "forestfire" {
		t.Fatalf("name = %q", f.Name())
	}
	if sz := f.Size(); sz.W != 12 || sz.H != 8 || len(f.Cells()) != 96 {
		t.Fatalf("size = %+v cells=%d", sz, len(f.Cells()))
	}
	initial := slices.Clone(f.Cells())
	for i := 0; i < 5; i++ {
		f.Step()
	}
	if f.Driver().StepCount() != 3 {
		t.Fatalf("sim stepped past its configured steps: %d", f.Driver().StepCount())
	}
	f.Reset(0)
	if !slices.Equal(initial, f.Cells()) {
		t.Fatal("Reset(0) should replant with the configured seed")
	}
	if p, ok := f.Parameters().Lookup("steps"); !ok || p.Value != "3" {
		t.Fatalf("steps parameter = %+v", p)
	}

	if _, err := New(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("New(zero config) err = %v", err)
	}
}
