//go:build ebiten

package ui

import (
	"image/color"
	"strings"

	"forest-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

const (
	panelPadding   = 12
	headerBaseline = 18
	rowSpacing     = 16
	rowsTop        = panelPadding + headerBaseline + 14
)

var (
	panelColor  = color.RGBA{R: 16, G: 16, B: 20, A: 255}
	titleColor  = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	headerColor = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	rowColor    = color.RGBA{R: 160, G: 160, B: 170, A: 255}
)

const keysHelp = "spc pause  n step  r reset  s seed"

// HUD renders the parameter panel to the right of the simulation view.
type HUD struct {
	sim        core.Sim
	width      int
	panel      *ebiten.Image
	lastHeight int
	title      string
	lines      []string
}

// NewHUD constructs a HUD for the provided simulation and panel width.
func NewHUD(sim core.Sim, width int) *HUD {
	if width < 0 {
		width = 0
	}
	return &HUD{sim: sim, width: width, title: Title(sim)}
}

// Update refreshes the panel text from the sim's parameter snapshot.
func (h *HUD) Update() {
	if h == nil {
		return
	}
	h.lines = Lines(h.sim)
}

// Draw paints the panel starting at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int) {
	if h == nil || h.width <= 0 {
		return
	}
	height := screen.Bounds().Dy()
	if height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dx() != h.width || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(panelColor)
	h.drawText(height)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawText(height int) {
	face := basicfont.Face7x13
	text.Draw(h.panel, h.title, face, panelPadding, panelPadding+headerBaseline, titleColor)
	y := rowsTop
	for _, line := range h.lines {
		clr := headerColor
		if strings.HasPrefix(line, "  ") {
			clr = rowColor
		}
		text.Draw(h.panel, line, face, panelPadding, y, clr)
		y += rowSpacing
	}
	text.Draw(h.panel, keysHelp, face, panelPadding, height-panelPadding, rowColor)
}
