// Package term draws the simulation into a terminal with tcell. Every
// terminal row shows two grid rows using an upper half block.
package term

import (
	"image/color"

	"github.com/gdamore/tcell/v2"
)

const halfBlock = '▀'

// View maps a w*h grid onto the top-left corner of a terminal screen.
type View struct {
	W, H   int
	colors []tcell.Color
}

// NewView prepares a view for a w*h grid coloured by palette.
func NewView(w, h int, palette []color.RGBA) *View {
	v := &View{W: w, H: h, colors: make([]tcell.Color, len(palette))}
	for i, c := range palette {
		v.colors[i] = tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
	return v
}

// Rows returns the number of terminal rows the grid occupies.
func (v *View) Rows() int { return (v.H + 1) / 2 }

func (v *View) color(c uint8) tcell.Color {
	if len(v.colors) == 0 {
		return tcell.ColorBlack
	}
	return v.colors[min(int(c), len(v.colors)-1)]
}

// Draw paints cells onto screen, clipped to the screen size. It does not call
// Show.
func (v *View) Draw(s tcell.Screen, cells []uint8) {
	if len(cells) != v.W*v.H {
		return
	}
	sw, sh := s.Size()
	for row := 0; row < min(v.Rows(), sh); row++ {
		top := row * 2
		for x := 0; x < min(v.W, sw); x++ {
			fg := v.color(cells[top*v.W+x])
			bg := tcell.ColorBlack
			if top+1 < v.H {
				bg = v.color(cells[(top+1)*v.W+x])
			}
			s.SetContent(x, row, halfBlock, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

// Cell converts a terminal position into grid coordinates. ok is false when
// the position lies outside the grid.
func (v *View) Cell(col, row int) (x, y int, ok bool) {
	x, y = col, row*2
	return x, y, col >= 0 && row >= 0 && x < v.W && y < v.H
}

// Status writes text on the row below the grid.
func (v *View) Status(s tcell.Screen, text string) {
	row := v.Rows()
	sw, _ := s.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	col := 0
	for _, r := range text {
		if col >= sw {
			break
		}
		s.SetContent(col, row, r, nil, style)
		col++
	}
	for ; col < sw; col++ {
		s.SetContent(col, row, ' ', nil, style)
	}
}
