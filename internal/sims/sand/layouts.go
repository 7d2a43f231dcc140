package sand

import (
	"sort"

	"sandfall/internal/core"
)

// Layout paints the initial scene of a freshly reset world.
type Layout func(g *Grid, rng *core.RNG)

var layouts = map[string]Layout{
	"":      func(*Grid, *core.RNG) {},
	"basin": layoutBasin,
}

// Layouts lists the named scenes, excluding the default empty box.
func Layouts() []string {
	var names []string
	for name := range layouts {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// layoutBasin lays sloped stone shelves with occasional gaps across the lower
// half and pools water along the floor.
func layoutBasin(g *Grid, rng *core.RNG) {
	shelves := rng.IntN(3) + 4
	spacing := g.W / (shelves + 1)
	if spacing < 4 {
		return
	}
	for i := 0; i < shelves; i++ {
		startX := i*spacing + rng.IntN(max(spacing/3, 1))
		length := spacing - spacing/8 + rng.IntN(max(spacing/4, 1))
		baseY := g.H/2 + rng.IntN(max(g.H/4, 1))

		slope := rng.Source().Float64() * 0.6
		if rng.Bool() {
			slope = -slope
		}
		for dx := 0; dx < length; dx++ {
			x := startX + dx
			y := baseY + int(float64(dx)*slope)
			if !g.InBounds(x, y) {
				continue
			}
			if dx > 3 && dx < length-3 && rng.IntN(100) < 6 {
				continue
			}
			g.Set(x, y, Cell{Material: Stone})
		}
	}

	depth := max(g.H/16, 1)
	for y := g.H - depth; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.Material(x, y) == Empty {
				g.Set(x, y, Cell{Material: Water})
			}
		}
	}
}
