package forestfire

import (
	"errors"
	"fmt"

	"forest-ca/internal/core"
)

// CellState enumerates the states a forest cell can hold.
type CellState uint8

const (
	Empty CellState = iota
	Tree
	Burning
)

var (
	// ErrOutOfBounds reports a coordinate outside the grid, or a neighbourhood
	// query on a border cell.
	ErrOutOfBounds = core.ErrOutOfBounds
	// ErrInvalidConfig reports parameters the simulation cannot start with.
	ErrInvalidConfig = errors.New("invalid simulation config")
	// ErrInvalidState reports a cell value outside Empty, Tree and Burning.
	ErrInvalidState = errors.New("invalid cell state")
)

// Valid reports whether s is one of the three known states.
func (s CellState) Valid() bool { return s <= Burning }

func (s CellState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Tree:
		return "tree"
	case Burning:
		return "burning"
	default:
		return fmt.Sprintf("CellState(%d)", uint8(s))
	}
}
