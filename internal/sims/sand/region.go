package sand

import (
	"image"
	"sort"

	"sandfall/internal/core"
)

// Tracker maintains the active region as a set of square chunks. A chunk
// stays active for linger ticks after the last change inside or next to it;
// once every chunk has expired the simulation is asleep.
type Tracker struct {
	w, h   int
	chunk  int
	linger uint8

	ttl     *core.ByteGrid
	pending *core.ByteGrid
	active  int
}

// NewTracker builds a tracker for a w*h grid split into chunk*chunk blocks.
func NewTracker(w, h, chunk, linger int) *Tracker {
	if chunk <= 0 {
		chunk = 1
	}
	if linger <= 0 {
		linger = 1
	}
	if linger > 255 {
		linger = 255
	}
	cols := (w + chunk - 1) / chunk
	rows := (h + chunk - 1) / chunk
	return &Tracker{
		w:       w,
		h:       h,
		chunk:   chunk,
		linger:  uint8(linger),
		ttl:     core.NewByteGrid(cols, rows),
		pending: core.NewByteGrid(cols, rows),
	}
}

// ChunkSize returns the edge length of a chunk in cells.
func (t *Tracker) ChunkSize() int { return t.chunk }

// SetLinger changes how many quiet ticks later activations last.
func (t *Tracker) SetLinger(linger int) {
	t.linger = uint8(min(max(linger, 1), 255))
}

// Chunks returns the number of chunk columns and rows.
func (t *Tracker) Chunks() (cols, rows int) { return t.ttl.W, t.ttl.H }

// Mark records that (x, y) changed this tick. The chunks covering the cell and
// its eight neighbours become active for the next tick.
func (t *Tracker) Mark(x, y int) {
	cx0, cy0, cx1, cy1, ok := t.chunkSpan(x-1, y-1, x+1, y+1)
	if !ok {
		return
	}
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			t.pending.Set(cx, cy, 1)
		}
	}
}

// Activate wakes every chunk overlapping r, grown by one cell, for the
// current tick. It is used for writes that happen before the update pass.
func (t *Tracker) Activate(r image.Rectangle) {
	if r.Empty() {
		return
	}
	cx0, cy0, cx1, cy1, ok := t.chunkSpan(r.Min.X-1, r.Min.Y-1, r.Max.X, r.Max.Y)
	if !ok {
		return
	}
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			if t.ttl.At(cx, cy) == 0 {
				t.active++
			}
			t.ttl.Set(cx, cy, t.linger)
		}
	}
}

// WakeAll activates the whole grid.
func (t *Tracker) WakeAll() {
	t.Activate(image.Rect(0, 0, t.w, t.h))
}

// Advance ends a tick: marked chunks are refreshed, the rest age by one.
func (t *Tracker) Advance() {
	ttl := t.ttl.Cells()
	pending := t.pending.Cells()
	t.active = 0
	for i := range ttl {
		switch {
		case pending[i] != 0:
			ttl[i] = t.linger
			pending[i] = 0
		case ttl[i] > 0:
			ttl[i]--
		}
		if ttl[i] > 0 {
			t.active++
		}
	}
}

// Reset clears all activity.
func (t *Tracker) Reset() {
	t.ttl.Clear()
	t.pending.Clear()
	t.active = 0
}

// ChunkActive reports whether chunk (cx, cy) is part of the region.
func (t *Tracker) ChunkActive(cx, cy int) bool { return t.ttl.At(cx, cy) > 0 }

// ColumnActive reports whether any chunk in column cx is active.
func (t *Tracker) ColumnActive(cx int) bool {
	for cy := 0; cy < t.ttl.H; cy++ {
		if t.ttl.At(cx, cy) > 0 {
			return true
		}
	}
	return false
}

// Contains reports whether cell (x, y) lies in the active region.
func (t *Tracker) Contains(x, y int) bool {
	if x < 0 || y < 0 || x >= t.w || y >= t.h {
		return false
	}
	return t.ChunkActive(x/t.chunk, y/t.chunk)
}

// Empty reports whether the simulation is asleep.
func (t *Tracker) Empty() bool { return t.active == 0 }

// ActiveChunks returns the number of active chunks.
func (t *Tracker) ActiveChunks() int { return t.active }

// Rects merges the active chunks into rectangles in cell coordinates, ordered
// top to bottom then left to right.
func (t *Tracker) Rects() []image.Rectangle {
	if t.active == 0 {
		return nil
	}
	type run struct{ x0, x1, y0 int }
	var (
		out  []image.Rectangle
		open []run
	)
	closeRun := func(r run, y1 int) {
		out = append(out, t.cellRect(r.x0, r.y0, r.x1, y1))
	}
	cols, rows := t.Chunks()
	for cy := 0; cy < rows; cy++ {
		var next []run
		for cx := 0; cx < cols; {
			if !t.ChunkActive(cx, cy) {
				cx++
				continue
			}
			start := cx
			for cx < cols && t.ChunkActive(cx, cy) {
				cx++
			}
			r := run{x0: start, x1: cx, y0: cy}
			for i, o := range open {
				if o.x0 == start && o.x1 == cx {
					r.y0 = o.y0
					open = append(open[:i], open[i+1:]...)
					break
				}
			}
			next = append(next, r)
		}
		for _, o := range open {
			closeRun(o, cy)
		}
		open = next
	}
	for _, o := range open {
		closeRun(o, rows)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Min.Y != out[j].Min.Y {
			return out[i].Min.Y < out[j].Min.Y
		}
		return out[i].Min.X < out[j].Min.X
	})
	return out
}

// Bounds returns the smallest rectangle covering the whole active region.
func (t *Tracker) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, r := range t.Rects() {
		b = b.Union(r)
	}
	return b
}

func (t *Tracker) cellRect(cx0, cy0, cx1, cy1 int) image.Rectangle {
	return image.Rect(cx0*t.chunk, cy0*t.chunk, min(cx1*t.chunk, t.w), min(cy1*t.chunk, t.h))
}

// chunkSpan converts an inclusive cell span into an inclusive chunk span,
// clipped to the grid.
func (t *Tracker) chunkSpan(x0, y0, x1, y1 int) (cx0, cy0, cx1, cy1 int, ok bool) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, t.w-1), min(y1, t.h-1)
	if x0 > x1 || y0 > y1 {
		return 0, 0, 0, 0, false
	}
	return x0 / t.chunk, y0 / t.chunk, x1 / t.chunk, y1 / t.chunk, true
}
