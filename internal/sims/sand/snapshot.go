package sand

// Snapshot is an immutable copy of the grid as committed by a tick.
type Snapshot struct {
	w, h  int
	cells []uint8
}

// Size returns the snapshot dimensions.
func (s Snapshot) Size() (int, int) { return s.w, s.h }

// At returns the material at (x, y); coordinates outside the grid read as Wall.
func (s Snapshot) At(x, y int) MaterialID {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return Wall
	}
	return MaterialID(s.cells[y*s.w+x] & displayMaterialMask)
}

// Moved reports whether the cell at (x, y) moved in the tick that produced
// the snapshot.
func (s Snapshot) Moved(x, y int) bool {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return false
	}
	return s.cells[y*s.w+x]&displayMovedBit != 0
}

// Cells returns the display bytes. Callers must not modify them.
func (s Snapshot) Cells() []uint8 { return s.cells }

// publish encodes the grid into the back buffer and swaps it in.
func (w *World) publish() {
	w.grid.encodeDisplay(w.back, w.tick)
	w.mu.Lock()
	w.display, w.back = w.back, w.display
	w.mu.Unlock()
}

// Snapshot returns a copy of the last committed state. It is safe to call
// from any goroutine.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	cells := make([]uint8, len(w.display))
	copy(cells, w.display)
	return Snapshot{w: w.grid.W, h: w.grid.H, cells: cells}
}

// Cells returns the display buffer of the last committed tick, one palette
// index per cell. The slice is reused after the next tick.
func (w *World) Cells() []uint8 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.display
}

// CopyCells copies the last committed display buffer into dst, growing it
// when needed, and returns it.
func (w *World) CopyCells(dst []uint8) []uint8 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if cap(dst) < len(w.display) {
		dst = make([]uint8, len(w.display))
	}
	dst = dst[:len(w.display)]
	copy(dst, w.display)
	return dst
}
