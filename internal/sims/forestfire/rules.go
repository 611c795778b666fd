package forestfire

// Source supplies the uniform draws in [0, 1) consumed by the random events.
// *core.RNG and *rand.Rand both satisfy it.
type Source interface {
	Float64() float64
}

// Advance computes the next generation from src. Interior cells are visited
// in row-major order and read only from src:
//
//	Empty   -> Tree with GrowProbability (one draw)
//	Tree    -> Burning if a neighbour burns (no draw), else with
//	           LightningProbability (one draw)
//	Burning -> Empty (no draw)
//
// The border is copied unchanged. src is never modified.
func Advance(src *Grid, cfg Config, rng Source) *Grid {
	h, w := src.Dimensions()
	next := src.Clone()
	out := next.Cells()
	for r := 1; r < h-1; r++ {
		for c := 1; c < w-1; c++ {
			cur := src.state(r, c)
			nxt := cur
			switch cur {
			case Empty:
				if rng.Float64() < cfg.GrowProbability {
					nxt = Tree
				}
			case Tree:
				if HasBurningNeighbor(src, r, c) {
					nxt = Burning
				} else if rng.Float64() < cfg.LightningProbability {
					nxt = Burning
				}
			case Burning:
				nxt = Empty
			}
			out[r*w+c] = uint8(nxt)
		}
	}
	return next
}

// Plant builds the initial grid: every interior cell becomes a Tree with
// InitialTreeProbability, the border stays Empty. One draw per interior cell,
// row-major. cfg must already be valid.
func Plant(cfg Config, rng Source) *Grid {
	h, w := cfg.GridSize()
	g, err := NewGrid(h, w)
	if err != nil {
		panic(err)
	}
	cells := g.Cells()
	for r := 1; r < h-1; r++ {
		for c := 1; c < w-1; c++ {
			if rng.Float64() < cfg.InitialTreeProbability {
				cells[r*w+c] = uint8(Tree)
			}
		}
	}
	return g
}
