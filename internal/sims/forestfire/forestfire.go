package forestfire

import (
	"forest-ca/internal/core"
	pcore "forest-ca/pkg/core"
)

// Forest adapts a Driver to the core.Sim contract used by the GUI and tools.
type Forest struct {
	cfg    Config
	driver *Driver
}

// New returns a planted forest. Invalid configs are rejected.
func New(cfg Config) (*Forest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Forest{cfg: cfg}
	f.Reset(0)
	return f, nil
}

// Name returns the simulation identifier.
func (f *Forest) Name() string { return "forestfire" }

// Size reports the grid dimensions, border included.
func (f *Forest) Size() core.Size {
	h, w := f.cfg.GridSize()
	return core.Size{W: w, H: h}
}

// Reset replants the forest. A zero seed reuses the configured one.
func (f *Forest) Reset(seed int64) {
	cfg := f.cfg
	if seed != 0 {
		cfg.Seed = seed
	}
	d, err := NewDriver(cfg, pcore.NewRNG(cfg.Seed), nil)
	if err != nil {
		// f.cfg was validated in New.
		panic(err)
	}
	f.driver = d
}

// Step advances one generation until the configured step count is reached.
func (f *Forest) Step() { f.driver.Step() }

// Cells exposes the current grid as CellState bytes.
func (f *Forest) Cells() []uint8 { return f.driver.grid.Cells() }

// Driver exposes the underlying run.
func (f *Forest) Driver() *Driver { return f.driver }

func init() {
	core.Register("forestfire", func(m map[string]string) core.Sim {
		f, err := New(FromMap(m))
		if err != nil {
			f, _ = New(DefaultConfig())
		}
		return f
	})
}
