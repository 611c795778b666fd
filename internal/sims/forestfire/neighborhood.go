package forestfire

import "fmt"

// HasBurningNeighbor reports whether any of the 8 cells around (row, col) is
// Burning. The coordinate must be interior; border coordinates are a caller
// bug and panic with ErrOutOfBounds.
func HasBurningNeighbor(g *Grid, row, col int) bool {
	if !g.InInterior(row, col) {
		panic(fmt.Errorf("burning neighbour query at (%d,%d): %w", row, col, ErrOutOfBounds))
	}
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if g.state(row+dr, col+dc) == Burning {
				return true
			}
		}
	}
	return false
}
