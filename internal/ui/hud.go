//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"

	"sandfall/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the status and control panel to the right of the simulation
// view.
type HUD struct {
	sim        core.Sim
	width      int
	panel      *ebiten.Image
	lastHeight int

	controls     []controlState
	intSetter    core.IntParameterSetter
	panelOffsetX int
	title        string
	status       []string
}

// NewHUD constructs a HUD for the provided simulation and panel width.
func NewHUD(sim core.Sim, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{sim: sim, width: width, title: fmt.Sprintf("%s controls", sim.Name())}
	h.controls = newControlStates(sim)
	if setter, ok := sim.(core.IntParameterSetter); ok {
		h.intSetter = setter
	}
	return h
}

// Update refreshes status and control values and handles clicks on the
// control buttons.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	if p, ok := h.sim.(statusProvider); ok {
		h.status = p.Status()
	}
	if p, ok := h.sim.(parameterProvider); ok {
		refreshControls(h.controls, p.Parameters())
	}
	h.layoutControls()
	h.handleInput()
}

// Draw paints the HUD panel anchored to the right edge of the simulation view.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	height := h.sim.Size().H * max(scale, 1)
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})

	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	text.Draw(h.panel, h.title, face, panelPadding, y, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	for _, line := range h.status {
		y += statusSpacing
		text.Draw(h.panel, line, face, panelPadding, y, color.RGBA{R: 170, G: 170, B: 180, A: 255})
	}
	for i := range h.controls {
		s := &h.controls[i]
		fg := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if !s.hasValue {
			fg = color.RGBA{R: 160, G: 160, B: 170, A: 255}
		}
		text.Draw(h.panel, s.label(), face, panelPadding, s.top+labelBaseline, fg)
		_, minus := adjustTarget(s, -1)
		_, plus := adjustTarget(s, 1)
		h.drawButton(s.minusX0, s.y0, "-", minus)
		h.drawButton(s.plusX0, s.y0, "+", plus)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) handleInput() {
	if len(h.controls) == 0 || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	px := mx - h.panelOffsetX
	if px < 0 {
		return
	}
	for i := range h.controls {
		s := &h.controls[i]
		if my < s.y0 || my >= s.y1 {
			continue
		}
		switch {
		case px >= s.minusX0 && px < s.minusX1:
			applyAdjustment(s, h.intSetter, -1)
		case px >= s.plusX0 && px < s.plusX1:
			applyAdjustment(s, h.intSetter, 1)
		}
		return
	}
}

func (h *HUD) layoutControls() {
	top := panelPadding + headerBaseline + statusSpacing*len(h.status) + controlsGap
	for i := range h.controls {
		s := &h.controls[i]
		s.top = top + i*lineHeight
		s.y0 = s.top + (lineHeight-buttonSize)/2
		s.y1 = s.y0 + buttonSize
		s.plusX1 = h.width - panelPadding
		s.plusX0 = s.plusX1 - buttonSize
		s.minusX1 = s.plusX0 - buttonGap
		s.minusX0 = s.minusX1 - buttonSize
	}
}

func (h *HUD) drawButton(x, y int, label string, enabled bool) {
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	btn := h.panel.SubImage(image.Rect(x, y, x+buttonSize, y+buttonSize)).(*ebiten.Image)
	btn.Fill(bg)

	face := basicfont.Face7x13
	b := text.BoundString(face, label)
	text.Draw(h.panel, label, face, x+(buttonSize-b.Dx())/2, y+(buttonSize-b.Dy())/2+b.Dy(), fg)
}

const (
	panelPadding   = 12
	lineHeight     = 32
	buttonSize     = 22
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 20
	statusSpacing  = 16
	controlsGap    = 12
)
