package core

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds reports a coordinate outside the grid.
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// Contains reports whether (x, y) addresses a cell of the grid.
func (g *ByteGrid) Contains(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// At returns the value at (x, y).
func (g *ByteGrid) At(x, y int) (uint8, error) {
	if !g.Contains(x, y) {
		return 0, fmt.Errorf("at (%d,%d) in %dx%d grid: %w", x, y, g.W, g.H, ErrOutOfBounds)
	}
	return g.data[y*g.W+x], nil
}

// Set writes v at (x, y).
func (g *ByteGrid) Set(x, y int, v uint8) error {
	if !g.Contains(x, y) {
		return fmt.Errorf("set (%d,%d) in %dx%d grid: %w", x, y, g.W, g.H, ErrOutOfBounds)
	}
	g.data[y*g.W+x] = v
	return nil
}

// Clone returns a deep copy of the grid.
func (g *ByteGrid) Clone() *ByteGrid {
	return &ByteGrid{W: g.W, H: g.H, data: append([]uint8(nil), g.data...)}
}

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}
