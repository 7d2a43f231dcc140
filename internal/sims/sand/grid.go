package sand

import "fmt"

// Cell is one grid unit.
type Cell struct {
	Material MaterialID
	// Spread counts consecutive sideways-only moves of a fluid; it resets when
	// the cell falls (or rises, for gases).
	Spread uint8

	// moved holds the tick that last moved this cell; 0 means never.
	moved uint32
}

// Grid owns the simulation state in row-major order. Coordinates outside the
// grid read as Wall; writing there panics.
type Grid struct {
	W, H  int
	cells []Cell
}

// NewGrid allocates an empty grid with the given dimensions.
func NewGrid(w, h int) *Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Grid{W: w, H: h, cells: make([]Cell, w*h)}
}

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.W && y < g.H
}

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid) Index(x, y int) int { return y*g.W + x }

// Get returns the cell at (x, y), or a wall cell outside the grid.
func (g *Grid) Get(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Cell{Material: Wall}
	}
	return g.cells[y*g.W+x]
}

// Material is shorthand for Get(x, y).Material.
func (g *Grid) Material(x, y int) MaterialID {
	if !g.InBounds(x, y) {
		return Wall
	}
	return g.cells[y*g.W+x].Material
}

// Set writes c at (x, y).
func (g *Grid) Set(x, y int, c Cell) {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("sand: write outside grid at (%d,%d) on %dx%d", x, y, g.W, g.H))
	}
	g.cells[y*g.W+x] = c
}

// Clear empties every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{}
	}
}

// Counts tallies cells per material.
type Counts [numMaterials]int

// Of returns the number of cells holding id.
func (c Counts) Of(id MaterialID) int {
	if id >= numMaterials {
		return 0
	}
	return c[id]
}

// Matter returns the number of non-empty cells.
func (c Counts) Matter() int {
	total := 0
	for id, n := range c {
		if MaterialID(id) != Empty {
			total += n
		}
	}
	return total
}

// Census counts the cells of every material.
func (g *Grid) Census() Counts {
	var c Counts
	for _, cell := range g.cells {
		c[cell.Material]++
	}
	return c
}

// encodeDisplay writes one byte per cell: the material id in the low bits and
// displayMovedBit when the cell moved during tick.
func (g *Grid) encodeDisplay(dst []uint8, tick uint32) {
	for i, cell := range g.cells {
		v := uint8(cell.Material)
		if tick != 0 && cell.moved == tick && cell.Material != Empty {
			v |= displayMovedBit
		}
		dst[i] = v
	}
}
