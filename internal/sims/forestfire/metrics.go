package forestfire

// Sample counts the Burning cells of the whole grid.
func Sample(g *Grid) int {
	n := 0
	for _, v := range g.Cells() {
		if CellState(v) == Burning {
			n++
		}
	}
	return n
}

// Series is the append-only burning count per step, step 0 first.
type Series struct {
	counts []int
}

// Append records the count of the next step.
func (s *Series) Append(count int) { s.counts = append(s.counts, count) }

// Len returns the number of recorded steps.
func (s *Series) Len() int { return len(s.counts) }

// At returns the count recorded for step i.
func (s *Series) At(i int) int { return s.counts[i] }

// Values returns a copy of the recorded counts.
func (s *Series) Values() []int { return append([]int(nil), s.counts...) }

// Peak returns the largest count and the first step it was reached at.
// An empty series reports (0, -1).
func (s *Series) Peak() (count, step int) {
	step = -1
	for i, v := range s.counts {
		if step < 0 || v > count {
			count, step = v, i
		}
	}
	return count, step
}

// Total sums the counts. Since every fire burns for exactly one step this is
// the number of cell-burn events over the run, initial fires included.
func (s *Series) Total() int {
	sum := 0
	for _, v := range s.counts {
		sum += v
	}
	return sum
}
