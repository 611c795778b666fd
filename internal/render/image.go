package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"forest-ca/internal/sims/forestfire"
)

// Image rasterises g with one scale x scale block per cell.
func Image(g *forestfire.Grid, palette []color.RGBA, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	h, w := g.Dimensions()
	src := make([]byte, 4*w*h)
	fillPaletteRGBA(src, g.Cells(), palette)

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h*scale; y++ {
		row := (y / scale) * w
		for x := 0; x < w*scale; x++ {
			s := (row + x/scale) * 4
			d := img.PixOffset(x, y)
			copy(img.Pix[d:d+4], src[s:s+4])
		}
	}
	return img
}

// WritePNG encodes g as a PNG using ForestPalette.
func WritePNG(w io.Writer, g *forestfire.Grid, scale int) error {
	if err := png.Encode(w, Image(g, ForestPalette, scale)); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}
