package sand

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	displayMaterialMask = 0x7f
	displayMovedBit     = 0x80

	movedHighlight = 0.18
)

var sandPalette = buildSandPalette()

// Palette exposes the color table indexed by Cells. Cells that moved during
// the last tick are drawn slightly lighter.
func (w *World) Palette() []color.RGBA {
	return sandPalette
}

func buildSandPalette() []color.RGBA {
	palette := make([]color.RGBA, 256)
	white := colorful.Color{R: 1, G: 1, B: 1}
	for i := range palette {
		id := MaterialID(i & displayMaterialMask)
		if id >= numMaterials {
			palette[i] = color.RGBA{R: 255, B: 255, A: 255}
			continue
		}
		base := materials[id].Color
		if i&displayMovedBit == 0 {
			palette[i] = base
			continue
		}
		c, _ := colorful.MakeColor(base)
		r, g, b := c.BlendLab(white, movedHighlight).Clamped().RGB255()
		palette[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return palette
}
