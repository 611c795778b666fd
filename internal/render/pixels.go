package render

import "image/color"

// ForestPalette colours cells by state: Empty, Tree, Burning.
var ForestPalette = []color.RGBA{
	{R: 0x2b, G: 0x22, B: 0x1a, A: 0xff},
	{R: 0x2e, G: 0x8b, B: 0x3a, A: 0xff},
	{R: 0xff, G: 0x6a, B: 0x13, A: 0xff},
}

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		for i := range cells {
			base := i * 4
			buf[base+0] = 0
			buf[base+1] = 0
			buf[base+2] = 0
			buf[base+3] = 0
		}
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
