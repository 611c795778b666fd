package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"forest-ca/internal/sims/forestfire"
)

// Glyphs maps each cell state to the text drawn for it.
type Glyphs [3]string

var (
	// ASCIIGlyphs render on any terminal.
	ASCIIGlyphs = Glyphs{".", "T", "*"}
	// EmojiGlyphs match the classic forest printout.
	EmojiGlyphs = Glyphs{".", "\U0001F333", "\U0001F525"}
)

// GlyphsByName resolves "ascii" or "emoji".
func GlyphsByName(name string) (Glyphs, error) {
	switch strings.ToLower(name) {
	case "", "ascii":
		return ASCIIGlyphs, nil
	case "emoji":
		return EmojiGlyphs, nil
	default:
		return Glyphs{}, fmt.Errorf("unknown glyph set %q", name)
	}
}

// Console prints grids as space-separated glyph rows.
type Console struct {
	out    io.Writer
	glyphs Glyphs
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer, glyphs Glyphs) *Console {
	return &Console{out: out, glyphs: glyphs}
}

// WriteGrid prints every row of g followed by a blank line.
func (c *Console) WriteGrid(g *forestfire.Grid) error {
	bw := bufio.NewWriter(c.out)
	h, w := g.Dimensions()
	cells := g.Cells()
	for r := 0; r < h; r++ {
		for col := 0; col < w; col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(c.glyph(cells[r*w+col]))
		}
		bw.WriteByte('\n')
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// WriteFrame prints the step header, the grid and, after step 0, the
// burning count.
func (c *Console) WriteFrame(f forestfire.Frame) error {
	if _, err := fmt.Fprintf(c.out, "Time: %d\n", f.Step); err != nil {
		return err
	}
	if err := c.WriteGrid(f.Grid); err != nil {
		return err
	}
	if f.Step == 0 {
		return nil
	}
	_, err := fmt.Fprintf(c.out, "Burning Trees: %d\n", f.Burning)
	return err
}

// Observer adapts WriteFrame to the driver's observer hook.
func (c *Console) Observer() forestfire.Observer {
	return c.WriteFrame
}

func (c *Console) glyph(v uint8) string {
	if int(v) >= len(c.glyphs) {
		return "?"
	}
	return c.glyphs[v]
}
