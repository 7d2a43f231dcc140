//go:build ebiten

package ui

import (
	"image"
	"image/color"

	"sandfall/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

type regionProvider interface {
	ActiveRects() []image.Rectangle
}

type drainProvider interface {
	Drain() bool
	DrainRect() image.Rectangle
}

// Overlay draws optional debugging visuals on top of the base simulation.
type Overlay struct {
	sim        core.Sim
	scale      int
	showRegion bool

	cursorX, cursorY int
	cursorR          int
	cursorOn         bool
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	if scale <= 0 {
		scale = 1
	}
	return &Overlay{sim: sim, scale: scale}
}

// Update toggles the active region outlines with B.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		o.showRegion = !o.showRegion
	}
}

// ShowRegion reports whether region outlines are drawn.
func (o *Overlay) ShowRegion() bool { return o.showRegion }

// SetCursor positions the brush outline in cell coordinates. A negative
// radius hides it.
func (o *Overlay) SetCursor(x, y, radius int) {
	o.cursorX, o.cursorY, o.cursorR = x, y, radius
	o.cursorOn = radius >= 0
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	s := float32(o.scale)
	if p, ok := o.sim.(drainProvider); ok && p.Drain() {
		r := p.DrainRect()
		vector.DrawFilledRect(screen, float32(r.Min.X)*s, float32(r.Min.Y)*s, float32(r.Dx())*s, float32(r.Dy())*s,
			color.RGBA{R: 255, G: 60, B: 60, A: 160}, false)
	}
	if o.showRegion {
		if p, ok := o.sim.(regionProvider); ok {
			for _, r := range p.ActiveRects() {
				vector.StrokeRect(screen, float32(r.Min.X)*s, float32(r.Min.Y)*s, float32(r.Dx())*s, float32(r.Dy())*s,
					1, color.RGBA{R: 80, G: 255, B: 120, A: 200}, false)
			}
		}
	}
	if o.cursorOn {
		cx := (float32(o.cursorX) + 0.5) * s
		cy := (float32(o.cursorY) + 0.5) * s
		r := (float32(o.cursorR) + 0.5) * s
		vector.StrokeCircle(screen, cx, cy, r, 1, color.RGBA{R: 255, G: 255, B: 255, A: 140}, true)
	}
}
