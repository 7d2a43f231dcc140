//go:build ebiten

package app

import (
	"image/color"
	"log"
	"time"

	"sandfall/internal/core"
	"sandfall/internal/render"
	"sandfall/internal/sims/sand"
	"sandfall/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const hudWidth = 220

// editor is the input surface of an interactive sim.
type editor interface {
	Inject(x, y, radius int, id sand.MaterialID)
	Spray(x, y, radius int, id sand.MaterialID, tries int)
	Erase(x, y, radius int)
	SetDrain(enabled bool)
	Drain() bool
	BrushRadius() int
	SprayTries() int
	Err() error
}

type cellCopier interface {
	CopyCells(dst []uint8) []uint8
}

var materialKeys = []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	edit    editor
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	palette []color.RGBA
	cells   []uint8

	material sand.MaterialID
	failures *FailureLog

	scale    int
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, scale int, seed int64) *Game {
	size := sim.Size()
	g := &Game{
		sim:      sim,
		painter:  render.NewGridPainter(size.W, size.H),
		overlay:  ui.NewOverlay(sim, scale),
		hud:      ui.NewHUD(sim, hudWidth),
		material: sand.Sand,
		failures: NewFailureLog(log.Printf),
		scale:    scale,
		seed:     seed,
	}
	if e, ok := sim.(editor); ok {
		g.edit = e
	}
	if p, ok := sim.(core.PaletteProvider); ok {
		g.palette = p.Palette()
	}
	return g
}

// SelectMaterial changes the material placed by the left mouse button.
func (g *Game) SelectMaterial(id sand.MaterialID) { g.material = id }

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
	g.failures.Record(nil)
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	placeable := sand.Placeable()
	for i, key := range materialKeys {
		if i < len(placeable) && inpututil.IsKeyJustPressed(key) {
			g.material = placeable[i]
		}
	}
	if setter, ok := g.sim.(core.IntParameterSetter); ok && g.edit != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
			setter.SetIntParameter("brush", g.edit.BrushRadius()-1)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
			setter.SetIntParameter("brush", g.edit.BrushRadius()+1)
		}
	}

	g.overlay.Update()
	g.handleBrush()
	size := g.sim.Size()
	g.hud.Update(size.W * g.scale)

	if !g.paused || g.tickOnce {
		g.sim.Step()
		g.tickOnce = false
	}
	if g.edit != nil {
		g.failures.Record(g.edit.Err())
	}
	return nil
}

func (g *Game) handleBrush() {
	if g.edit == nil {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.edit.SetDrain(!g.edit.Drain())
	}
	mx, my := ebiten.CursorPosition()
	size := g.sim.Size()
	x, y := mx/g.scale, my/g.scale
	radius := g.edit.BrushRadius()
	if mx < 0 || my < 0 || x >= size.W || y >= size.H {
		g.overlay.SetCursor(0, 0, -1)
		return
	}
	g.overlay.SetCursor(x, y, radius)
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if tries := g.edit.SprayTries(); tries > 0 {
			g.edit.Spray(x, y, radius, g.material, tries)
		} else {
			g.edit.Inject(x, y, radius, g.material)
		}
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		g.edit.Erase(x, y, radius)
	}
}

// Draw renders the last committed simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	if c, ok := g.sim.(cellCopier); ok {
		g.cells = c.CopyCells(g.cells)
	} else {
		g.cells = g.sim.Cells()
	}
	g.painter.Blit(screen, g.cells, g.palette, g.scale)
	g.overlay.Draw(screen)
	status := g.material.String()
	if g.paused {
		status += " (paused)"
	}
	ebitenutil.DebugPrintAt(screen, status, 4, 4)
	g.hud.Draw(screen, g.sim.Size().W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + hudWidth, s.H * g.scale
}
