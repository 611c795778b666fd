package forestfire

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Phase is the lifecycle position of a Driver.
type Phase uint8

const (
	PhaseInitialized Phase = iota
	PhaseRunning
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Frame is the state after a completed step. Grid is a snapshot owned by the
// receiver; writing to it does not affect the run.
type Frame struct {
	Step    int
	Burning int
	Grid    *Grid
}

// Observer is notified once for the initial state and once per completed step.
// A non-nil error stops the run.
type Observer func(Frame) error

// Driver owns the current grid and the burning-count series of a single run.
type Driver struct {
	cfg    Config
	rng    Source
	log    *zap.Logger
	grid   *Grid
	series Series
	step   int
	phase  Phase
}

// NewDriver validates cfg, plants the initial forest and samples step 0.
func NewDriver(cfg Config, rng Source, log *zap.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newDriver(cfg, Plant(cfg, rng), rng, log), nil
}

// NewDriverFromGrid starts a run from a prepared grid instead of planting one.
// The grid is cloned and must match cfg's dimensions.
func NewDriverFromGrid(cfg Config, g *Grid, rng Source, log *zap.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	wantH, wantW := cfg.GridSize()
	if h, w := g.Dimensions(); h != wantH || w != wantW {
		return nil, fmt.Errorf("grid %dx%d does not match config %dx%d: %w", h, w, wantH, wantW, ErrInvalidConfig)
	}
	for _, v := range g.Cells() {
		if !CellState(v).Valid() {
			return nil, fmt.Errorf("initial grid: %w: %d", ErrInvalidState, v)
		}
	}
	return newDriver(cfg, g.Clone(), rng, log), nil
}

func newDriver(cfg Config, g *Grid, rng Source, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Driver{cfg: cfg, rng: rng, log: log, grid: g, phase: PhaseInitialized}
	d.series.Append(Sample(g))
	d.log.Debug("forest planted",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("steps", cfg.Steps),
		zap.Int("burning", d.series.At(0)))
	return d
}

// Step advances the forest by one generation. It reports false once the
// configured step count has been reached; the driver is then Finished.
func (d *Driver) Step() bool {
	switch d.phase {
	case PhaseFinished:
		return false
	case PhaseInitialized:
		d.phase = PhaseRunning
	}
	if d.step >= d.cfg.Steps {
		d.finish()
		return false
	}

	next := Advance(d.grid, d.cfg, d.rng)
	d.grid = next
	d.series.Append(Sample(next))
	d.step++

	if d.step >= d.cfg.Steps {
		d.finish()
	}
	return true
}

// Run steps until Finished, notifying observers after every completed step.
// Cancellation is honoured between steps; the in-flight step always completes.
func (d *Driver) Run(ctx context.Context, observers ...Observer) error {
	if d.phase == PhaseInitialized {
		if err := d.notify(observers); err != nil {
			return err
		}
	}
	for d.phase != PhaseFinished {
		if err := ctx.Err(); err != nil {
			d.log.Info("run interrupted", zap.Int("step", d.step), zap.Error(err))
			return err
		}
		if !d.Step() {
			break
		}
		if err := d.notify(observers); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) notify(observers []Observer) error {
	f := d.Frame()
	for _, o := range observers {
		if err := o(f); err != nil {
			return fmt.Errorf("observer at step %d: %w", f.Step, err)
		}
	}
	return nil
}

func (d *Driver) finish() {
	d.phase = PhaseFinished
	peak, at := d.series.Peak()
	d.log.Debug("run finished",
		zap.Int("steps", d.step),
		zap.Int("peak_burning", peak),
		zap.Int("peak_step", at))
}

// Frame returns the current step, its burning count and a copy of the grid.
func (d *Driver) Frame() Frame {
	return Frame{Step: d.step, Burning: d.series.At(d.step), Grid: d.grid.Clone()}
}

// Phase reports the lifecycle position.
func (d *Driver) Phase() Phase { return d.phase }

// StepCount returns the number of completed steps.
func (d *Driver) StepCount() int { return d.step }

// Grid returns a copy of the current grid.
func (d *Driver) Grid() *Grid { return d.grid.Clone() }

// Series returns a copy of the burning counts recorded so far.
func (d *Driver) Series() Series { return Series{counts: d.series.Values()} }

// Config returns the run parameters.
func (d *Driver) Config() Config { return d.cfg }
