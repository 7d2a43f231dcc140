package sand

import "fmt"

// update applies the movement rule of the cell at (x, y). A cell moves at
// most once per tick: both ends of a move are stamped with the tick.
func (s *Scheduler) update(st *strip, x, y int, tick uint32) {
	c := s.grid.cells[y*s.grid.W+x]
	if c.Material == Empty || c.moved == tick {
		return
	}
	m := Lookup(c.Material)
	switch m.Mobility {
	case Static:
	case Granular:
		s.settle(st, x, y, 1, m, tick)
	case Liquid:
		if !s.settle(st, x, y, 1, m, tick) {
			s.spread(st, x, y, c, m, tick)
		}
	case Gas:
		if !s.settle(st, x, y, -1, m, tick) {
			s.spread(st, x, y, c, m, tick)
		}
	default:
		panic(fmt.Sprintf("sand: no rule for %v material %v", m.Mobility, m.ID))
	}
}

// settle moves the cell one row in direction dy: straight first, then the two
// diagonals in random order.
func (s *Scheduler) settle(st *strip, x, y, dy int, m Material, tick uint32) bool {
	from := y*s.grid.W + x
	if to, ok := s.vertical(m, x, y+dy, tick); ok {
		s.move(st, from, to, tick, false)
		return true
	}
	dx := 1
	if st.rng.Bool() {
		dx = -1
	}
	for _, d := range [2]int{dx, -dx} {
		if to, ok := s.vertical(m, x+d, y+dy, tick); ok {
			s.move(st, from, to, tick, false)
			return true
		}
	}
	return false
}

// spread moves a fluid one cell sideways, toward the side with the longer run
// of open cells within reach. Ties are broken at random. A fluid that has
// used up its sideways moves only steps toward an open drain.
func (s *Scheduler) spread(st *strip, x, y int, c Cell, m Material, tick uint32) {
	from := y*s.grid.W + x
	if c.Spread >= s.spreadLimit {
		if dir := s.pull(m, x); dir != 0 && s.lateral(m, x+dir, y, tick) {
			s.move(st, from, from+dir, tick, true)
		}
		return
	}
	left := s.openRun(m, x, y, -1, tick)
	right := s.openRun(m, x, y, 1, tick)
	if left == 0 && right == 0 {
		return
	}
	dir := 1
	switch {
	case left > right:
		dir = -1
	case left == right && st.rng.Bool():
		dir = -1
	}
	s.move(st, from, from+dir, tick, true)
}

// pull returns the sideways step that brings a liquid in column x closer to
// the open drain, or 0.
func (s *Scheduler) pull(m Material, x int) int {
	switch {
	case m.Mobility != Liquid || s.drain.Empty():
		return 0
	case x < s.drain.Min.X:
		return 1
	case x >= s.drain.Max.X:
		return -1
	}
	return 0
}

// Release grants the resting fluids on either side of idx one more sideways
// move when idx now holds space they could enter. Cells that moved this tick
// are skipped, so a fluid never frees itself by moving. It must only be
// called between ticks.
func (s *Scheduler) Release(idx int, tick uint32, wake func(x, y int)) {
	g := s.grid
	x, y := idx%g.W, idx/g.W
	open := Lookup(g.cells[idx].Material)
	if open.ID != Empty && open.Mobility != Gas {
		return
	}
	for _, nx := range [2]int{x - 1, x + 1} {
		if !g.InBounds(nx, y) {
			continue
		}
		n := &g.cells[y*g.W+nx]
		if n.Material == Empty || n.moved == tick || n.Spread < s.spreadLimit {
			continue
		}
		switch Lookup(n.Material).Mobility {
		case Liquid:
		case Gas:
			if open.ID != Empty {
				continue
			}
		default:
			continue
		}
		n.Spread = s.spreadLimit - 1
		wake(nx, y)
	}
}

// vertical reports whether m may enter (x, y) by falling (or rising, for a
// gas), and the target index.
func (s *Scheduler) vertical(m Material, x, y int, tick uint32) (int, bool) {
	if !s.grid.InBounds(x, y) {
		return 0, false
	}
	idx := y*s.grid.W + x
	t := s.grid.cells[idx]
	if t.Material == Empty {
		return idx, true
	}
	if t.moved == tick {
		return 0, false
	}
	tm := Lookup(t.Material)
	if !tm.Mobile() {
		return 0, false
	}
	if m.Mobility == Gas {
		return idx, tm.Mobility != Gas && tm.Density > m.Density
	}
	return idx, tm.Density < m.Density
}

// lateral reports whether m may step sideways into (x, y).
func (s *Scheduler) lateral(m Material, x, y int, tick uint32) bool {
	if !s.grid.InBounds(x, y) {
		return false
	}
	t := s.grid.cells[y*s.grid.W+x]
	if t.Material == Empty {
		return true
	}
	if m.Mobility != Liquid || t.moved == tick {
		return false
	}
	return Lookup(t.Material).Mobility == Gas
}

func (s *Scheduler) openRun(m Material, x, y, dir int, tick uint32) int {
	n := 0
	for i := 1; i <= s.reach; i++ {
		if !s.lateral(m, x+dir*i, y, tick) {
			break
		}
		n++
	}
	return n
}

// move swaps the cells at from and to, logging both writes.
func (s *Scheduler) move(st *strip, from, to int, tick uint32, sideways bool) {
	cells := s.grid.cells
	st.edits = append(st.edits, edit{idx: from, prev: cells[from]}, edit{idx: to, prev: cells[to]})
	cells[from], cells[to] = cells[to], cells[from]

	mover := &cells[to]
	mover.moved = tick
	if sideways {
		if mover.Spread < 255 {
			mover.Spread++
		}
	} else {
		mover.Spread = 0
	}
	if cells[from].Material != Empty {
		cells[from].moved = tick
	}
	st.moves++
}
