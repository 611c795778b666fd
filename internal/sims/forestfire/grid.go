package forestfire

import (
	"fmt"

	"forest-ca/internal/core"
)

// Grid is a fixed-size height x width field of cell states. The outer ring of
// cells is a border that the transition rules never write.
type Grid struct {
	cells *core.ByteGrid
}

// NewGrid allocates an all-Empty grid. Dimensions include the border.
func NewGrid(height, width int) (*Grid, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("grid %dx%d: %w", height, width, ErrInvalidConfig)
	}
	return &Grid{cells: core.NewByteGrid(width, height)}, nil
}

// Dimensions returns the grid height and width, border included.
func (g *Grid) Dimensions() (height, width int) { return g.cells.H, g.cells.W }

// At returns the state of the cell at (row, col).
func (g *Grid) At(row, col int) (CellState, error) {
	v, err := g.cells.At(col, row)
	if err != nil {
		return Empty, err
	}
	return CellState(v), nil
}

// Set writes the state of the cell at (row, col). Time never advances through
// Set; Advance builds a fresh grid instead.
func (g *Grid) Set(row, col int, s CellState) error {
	if !s.Valid() {
		return fmt.Errorf("set (%d,%d): %w: %d", row, col, ErrInvalidState, uint8(s))
	}
	return g.cells.Set(col, row, uint8(s))
}

// InInterior reports whether (row, col) lies strictly inside the border.
func (g *Grid) InInterior(row, col int) bool {
	return row >= 1 && row < g.cells.H-1 && col >= 1 && col < g.cells.W-1
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid { return &Grid{cells: g.cells.Clone()} }

// Cells exposes the row-major state buffer. Callers must treat it as read-only.
func (g *Grid) Cells() []uint8 { return g.cells.Cells() }

func (g *Grid) state(row, col int) CellState {
	return CellState(g.cells.Cells()[g.cells.Index(col, row)])
}
