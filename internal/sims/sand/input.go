package sand

import "image"

type inputKind uint8

const (
	inputInject inputKind = iota
	inputSpray
	inputErase
)

// inputOp is one queued external write, applied at the start of a tick.
type inputOp struct {
	kind   inputKind
	x, y   int
	radius int
	id     MaterialID
	tries  int
}

// Inject queues id into every empty in-range cell within radius of (x, y).
// Occupied cells are never overwritten. Empty and Wall are ignored.
func (w *World) Inject(x, y, radius int, id MaterialID) {
	if !injectable(id) {
		return
	}
	w.pending = append(w.pending, inputOp{kind: inputInject, x: x, y: y, radius: max(radius, 0), id: id})
}

// Spray queues tries random samples inside the disk around (x, y); each
// sample fills its cell with id when that cell is empty.
func (w *World) Spray(x, y, radius int, id MaterialID, tries int) {
	if !injectable(id) || tries <= 0 {
		return
	}
	w.pending = append(w.pending, inputOp{kind: inputSpray, x: x, y: y, radius: max(radius, 0), id: id, tries: tries})
}

// Erase queues clearing every non-wall cell within radius of (x, y).
func (w *World) Erase(x, y, radius int) {
	w.pending = append(w.pending, inputOp{kind: inputErase, x: x, y: y, radius: max(radius, 0)})
}

// SetDrain queues enabling or disabling the drain for the next tick.
func (w *World) SetDrain(enabled bool) {
	w.drainReq = &enabled
}

// Drain reports the drain state, including a not yet applied request.
func (w *World) Drain() bool {
	if w.drainReq != nil {
		return *w.drainReq
	}
	return w.drain
}

// DrainRect returns the cells emptied while the drain is open: a strip along
// the bottom edge, centred horizontally.
func (w *World) DrainRect() image.Rectangle {
	p := w.cfg.Params
	cx := w.grid.W / 2
	r := image.Rect(cx-p.DrainHalfWidth, w.grid.H-p.DrainDepth, cx+p.DrainHalfWidth+1, w.grid.H)
	return r.Intersect(image.Rect(0, 0, w.grid.W, w.grid.H))
}

func injectable(id MaterialID) bool {
	return id < numMaterials && Lookup(id).Placeable
}

// applyInput drains the pending queue into the grid. Every write is logged so
// a failed tick can restore the grid, and every touched area joins the
// current region.
func (w *World) applyInput(st *Stats) {
	if w.drainReq != nil {
		enabled := *w.drainReq
		w.drainReq = nil
		if enabled && !w.drain {
			// Resting liquid anywhere may now flow toward the drain.
			w.tracker.WakeAll()
		}
		w.drain = enabled
		if enabled {
			w.sched.SetDrain(w.DrainRect())
		} else {
			w.sched.SetDrain(image.Rectangle{})
		}
	}

	w.applied = append(w.applied[:0], w.pending...)
	w.pending = w.pending[:0]
	for _, op := range w.applied {
		area := image.Rect(op.x-op.radius, op.y-op.radius, op.x+op.radius+1, op.y+op.radius+1).
			Intersect(image.Rect(0, 0, w.grid.W, w.grid.H))
		if area.Empty() {
			continue
		}
		switch op.kind {
		case inputInject:
			r2 := op.radius * op.radius
			for y := area.Min.Y; y < area.Max.Y; y++ {
				for x := area.Min.X; x < area.Max.X; x++ {
					dx, dy := x-op.x, y-op.y
					if dx*dx+dy*dy <= r2 && w.place(x, y, op.id) {
						st.Injected++
					}
				}
			}
		case inputSpray:
			span := 2*op.radius + 1
			r2 := op.radius * op.radius
			for i := 0; i < op.tries; i++ {
				var dx, dy int
				for {
					dx = w.rng.IntN(span) - op.radius
					dy = w.rng.IntN(span) - op.radius
					if dx*dx+dy*dy <= r2 {
						break
					}
				}
				if w.place(op.x+dx, op.y+dy, op.id) {
					st.Injected++
				}
			}
		case inputErase:
			r2 := op.radius * op.radius
			for y := area.Min.Y; y < area.Max.Y; y++ {
				for x := area.Min.X; x < area.Max.X; x++ {
					dx, dy := x-op.x, y-op.y
					if dx*dx+dy*dy <= r2 && w.clear(x, y) {
						st.Erased++
					}
				}
			}
		}
		w.tracker.Activate(area)
	}
}

func (w *World) place(x, y int, id MaterialID) bool {
	if !w.grid.InBounds(x, y) || w.grid.Material(x, y) != Empty {
		return false
	}
	idx := w.grid.Index(x, y)
	w.inputLog = append(w.inputLog, edit{idx: idx, prev: w.grid.cells[idx]})
	w.grid.cells[idx] = Cell{Material: id}
	return true
}

func (w *World) clear(x, y int) bool {
	if !w.grid.InBounds(x, y) {
		return false
	}
	idx := w.grid.Index(x, y)
	if m := w.grid.cells[idx].Material; m == Empty || m == Wall {
		return false
	}
	w.inputLog = append(w.inputLog, edit{idx: idx, prev: w.grid.cells[idx]})
	w.grid.cells[idx] = Cell{}
	w.tracker.Mark(x, y)
	return true
}

// applyDrain removes every mobile material inside the drain strip. It runs
// after the update pass.
func (w *World) applyDrain() int {
	r := w.DrainRect()
	removed := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			idx := w.grid.Index(x, y)
			c := w.grid.cells[idx]
			if c.Material == Empty || !Lookup(c.Material).Mobile() {
				continue
			}
			w.grid.cells[idx] = Cell{moved: w.tick}
			w.touch(idx)
			removed++
		}
	}
	return removed
}
