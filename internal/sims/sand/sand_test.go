package sand

import (
	"context"
	"errors"
	"image"
	"slices"
	"strings"
	"testing"
)

func newTestWorld(w, h int, mutate func(*Config)) *World {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	cfg.Seed = 42
	cfg.Params.ChunkSize = 8
	cfg.Params.Workers = 4
	if mutate != nil {
		mutate(&cfg)
	}
	return NewWithConfig(cfg)
}

func materials2D(w *World) []MaterialID {
	out := make([]MaterialID, len(w.grid.cells))
	for i, c := range w.grid.cells {
		out[i] = c.Material
	}
	return out
}

// pour queues a deterministic mix of materials along the top rows.
func pour(w *World, tick int) {
	ids := Placeable()
	id := ids[tick%len(ids)]
	if id == Stone {
		id = Sand
	}
	x := (tick*7 + 3) % w.grid.W
	w.Inject(x, 2, 2, id)
}

func runUntilAsleep(t *testing.T, w *World, limit int) int {
	t.Helper()
	for i := 0; i < limit; i++ {
		if w.Asleep() {
			return i
		}
		if err := w.StepContext(context.Background()); err != nil {
			t.Fatalf("tick %d failed: %v", w.Tick(), err)
		}
	}
	if !w.Asleep() {
		t.Fatalf("world still active after %d ticks (%d chunks)", limit, w.tracker.ActiveChunks())
	}
	return limit
}

// failingRunner updates a chunk normally and then reports fail's verdict.
type failingRunner struct {
	next chunkRunner
	fail func(cx, cy int) error
}

func (r failingRunner) runChunk(st *strip, cx, cy int, tick uint32) error {
	if err := r.next.runChunk(st, cx, cy, tick); err != nil {
		return err
	}
	return r.fail(cx, cy)
}

func TestSandSinksThroughWaterInOneTick(t *testing.T) {
	world := newTestWorld(1, 2, nil)
	world.grid.Set(0, 0, Cell{Material: Sand})
	world.grid.Set(0, 1, Cell{Material: Water})
	world.Step()
	if world.Err() != nil {
		t.Fatalf("step failed: %v", world.Err())
	}
	if world.grid.Material(0, 1) != Sand || world.grid.Material(0, 0) != Water {
		t.Fatalf("expected sand below water, got %v over %v", world.grid.Material(0, 0), world.grid.Material(0, 1))
	}
}

func TestDensityPairs(t *testing.T) {
	cases := []struct {
		top, bottom MaterialID
		swaps       bool
	}{
		{Water, Oil, true},
		{Oil, Water, false},
		{Water, Steam, true},
		{Sand, Oil, true},
		{Oil, Sand, false},
		{Sand, Stone, false},
	}
	for _, tc := range cases {
		world := newTestWorld(1, 2, nil)
		world.grid.Set(0, 0, Cell{Material: tc.top})
		world.grid.Set(0, 1, Cell{Material: tc.bottom})
		world.Step()
		swapped := world.grid.Material(0, 0) == tc.bottom && world.grid.Material(0, 1) == tc.top
		if swapped != tc.swaps {
			t.Fatalf("%v over %v: swapped=%v, want %v", tc.top, tc.bottom, swapped, tc.swaps)
		}
	}
}

func TestSteamRises(t *testing.T) {
	world := newTestWorld(1, 6, nil)
	world.grid.Set(0, 5, Cell{Material: Steam})
	runUntilAsleep(t, world, 100)
	if world.grid.Material(0, 0) != Steam {
		t.Fatal("steam should collect at the top")
	}
}

func TestCellMovesOncePerTick(t *testing.T) {
	world := newTestWorld(1, 10, nil)
	world.grid.Set(0, 0, Cell{Material: Sand})
	world.Step()
	if world.grid.Material(0, 1) != Sand {
		t.Fatalf("sand should fall exactly one row per tick")
	}
	if world.Stats().Moves != 1 {
		t.Fatalf("Moves = %d, want 1", world.Stats().Moves)
	}
	snap := world.Snapshot()
	if !snap.Moved(0, 1) || snap.Moved(0, 0) {
		t.Fatal("snapshot should flag only the moved cell")
	}
	if snap.At(0, 1) != Sand || snap.At(-1, 0) != Wall {
		t.Fatal("unexpected snapshot contents")
	}
}

func TestConservationWithoutDrain(t *testing.T) {
	world := newTestWorld(48, 40, func(c *Config) { c.Layout = "basin" })
	for i := 0; i < 60; i++ {
		pour(world, i)
		world.Step()
		if world.Err() != nil {
			t.Fatalf("step failed: %v", world.Err())
		}
	}
	before := world.Census()
	for i := 0; i < 200; i++ {
		world.Step()
	}
	after := world.Census()
	if before != after {
		t.Fatalf("census changed without input: %v -> %v", before, after)
	}
}

func TestInjectNeverOverwrites(t *testing.T) {
	world := newTestWorld(20, 20, nil)
	for x := 5; x < 15; x++ {
		world.grid.Set(x, 10, Cell{Material: Stone})
	}
	stone := world.Census().Of(Stone)
	world.Inject(10, 10, 3, Sand)
	world.Step()

	st := world.Stats()
	if st.Injected == 0 {
		t.Fatal("expected sand to be injected")
	}
	c := world.Census()
	if c.Of(Stone) != stone {
		t.Fatalf("injection overwrote stone: %d -> %d", stone, c.Of(Stone))
	}
	if c.Of(Sand) != st.Injected {
		t.Fatalf("sand count %d differs from injected %d", c.Of(Sand), st.Injected)
	}
}

func TestInjectClipsAndIgnoresFixtures(t *testing.T) {
	world := newTestWorld(10, 10, nil)
	world.Inject(0, 0, 1, Wall)
	world.Inject(0, 0, 1, Empty)
	if len(world.pending) != 0 {
		t.Fatal("wall and empty must not be injectable")
	}
	world.Inject(-1, 0, 1, Stone)
	world.Step()
	if got := world.Census().Of(Stone); got != 1 {
		t.Fatalf("clipped injection placed %d cells, want 1", got)
	}
}

func TestEraseKeepsWalls(t *testing.T) {
	world := newTestWorld(10, 10, nil)
	world.grid.Set(5, 5, Cell{Material: Wall})
	world.grid.Set(4, 5, Cell{Material: Stone})
	world.Erase(5, 5, 2)
	world.Step()
	if world.grid.Material(5, 5) != Wall {
		t.Fatal("erase must not remove walls")
	}
	if world.grid.Material(4, 5) != Empty || world.Stats().Erased != 1 {
		t.Fatalf("erase should clear the stone, erased=%d", world.Stats().Erased)
	}
}

func TestSprayPlacesWithinDisk(t *testing.T) {
	world := newTestWorld(40, 40, nil)
	for x := 0; x < 40; x++ {
		world.grid.Set(x, 25, Cell{Material: Stone})
	}
	world.Spray(20, 20, 4, Stone, 30)
	world.Step()
	st := world.Stats()
	if st.Injected == 0 || st.Injected > 30 {
		t.Fatalf("Injected = %d, want 1..30", st.Injected)
	}
	for y := 0; y < 25; y++ {
		for x := 0; x < 40; x++ {
			if world.grid.Material(x, y) != Stone {
				continue
			}
			dx, dy := x-20, y-20
			if dx*dx+dy*dy > 16 {
				t.Fatalf("spray placed stone outside the disk at (%d,%d)", x, y)
			}
		}
	}
}

func TestSettlesToSleep(t *testing.T) {
	world := newTestWorld(40, 30, nil)
	for i := 0; i < 40; i++ {
		pour(world, i)
		world.Step()
	}
	runUntilAsleep(t, world, 5000)
	before := materials2D(world)
	for i := 0; i < 5; i++ {
		world.Step()
	}
	if !slices.Equal(before, materials2D(world)) {
		t.Fatal("a sleeping world must not change")
	}
	if world.ActiveRects() != nil {
		t.Fatal("a sleeping world has no active region")
	}
}

func TestIdleRegionShrinks(t *testing.T) {
	world := newTestWorld(64, 64, nil)
	if world.tracker.ActiveChunks() != 64 {
		t.Fatalf("reset should wake the whole grid, got %d chunks", world.tracker.ActiveChunks())
	}
	runUntilAsleep(t, world, 10)

	world.Inject(4, 60, 1, Sand)
	world.Step()
	if world.Stats().ActiveChunks == 0 || world.Stats().ActiveChunks > 4 {
		t.Fatalf("a local injection should wake a few chunks, got %d", world.Stats().ActiveChunks)
	}
	b := world.ActiveBounds()
	if b.Min.X > 4 || b.Max.X > 16 || b.Min.Y < 48 {
		t.Fatalf("region %v should stay near the injection", b)
	}
	runUntilAsleep(t, world, 200)
}

// canMove reports whether the cell at (x, y) has a legal move on an
// unstamped grid. drain is empty while the drain is closed.
func canMove(g *Grid, limit uint8, drain image.Rectangle, x, y int) bool {
	c := g.Get(x, y)
	if c.Material == Empty {
		return false
	}
	m := Lookup(c.Material)
	enter := func(tx, ty int) bool {
		if !g.InBounds(tx, ty) {
			return false
		}
		t := g.Get(tx, ty)
		if t.Material == Empty {
			return true
		}
		tm := Lookup(t.Material)
		if !tm.Mobile() {
			return false
		}
		if m.Mobility == Gas {
			return tm.Mobility != Gas && tm.Density > m.Density
		}
		return tm.Density < m.Density
	}
	side := func(tx, ty int) bool {
		if !g.InBounds(tx, ty) {
			return false
		}
		t := g.Get(tx, ty)
		return t.Material == Empty || (m.Mobility == Liquid && Lookup(t.Material).Mobility == Gas)
	}
	dy := 1
	if m.Mobility == Gas {
		dy = -1
	}
	switch m.Mobility {
	case Static:
		return false
	case Granular:
		return enter(x, y+dy) || enter(x-1, y+dy) || enter(x+1, y+dy)
	default:
		if enter(x, y+dy) || enter(x-1, y+dy) || enter(x+1, y+dy) {
			return true
		}
		if c.Spread < limit {
			return side(x-1, y) || side(x+1, y)
		}
		if m.Mobility != Liquid || drain.Empty() {
			return false
		}
		switch {
		case x < drain.Min.X:
			return side(x+1, y)
		case x >= drain.Max.X:
			return side(x-1, y)
		}
		return false
	}
}

func TestRegionCoversMovableCells(t *testing.T) {
	world := newTestWorld(48, 40, func(c *Config) {
		c.Layout = "basin"
		c.Params.RegionLinger = 1
	})
	limit := uint8(world.cfg.Params.SpreadLimit)
	for i := 0; i < 300; i++ {
		if i < 80 {
			pour(world, i)
		}
		if i == 120 {
			world.SetDrain(true)
		}
		world.Step()
		if world.Err() != nil {
			t.Fatalf("step failed: %v", world.Err())
		}
		for y := 0; y < world.grid.H; y++ {
			for x := 0; x < world.grid.W; x++ {
				if canMove(world.grid, limit, world.sched.drain, x, y) && !world.InRegion(x, y) {
					t.Fatalf("tick %d: movable %v at (%d,%d) outside the region", world.Tick(), world.grid.Material(x, y), x, y)
				}
			}
		}
	}
}

func TestWorkerCountDoesNotChangeResult(t *testing.T) {
	run := func(workers int) []uint8 {
		world := newTestWorld(64, 48, func(c *Config) {
			c.Layout = "basin"
			c.Params.Workers = workers
		})
		for i := 0; i < 150; i++ {
			if i < 50 {
				pour(world, i)
			}
			world.Step()
		}
		return world.CopyCells(nil)
	}
	base := run(1)
	for _, workers := range []int{2, 8} {
		if !slices.Equal(base, run(workers)) {
			t.Fatalf("%d workers diverged from a single worker", workers)
		}
	}
}

func TestFailedTickRollsBack(t *testing.T) {
	world := newTestWorld(32, 24, nil)
	for i := 0; i < 10; i++ {
		pour(world, i)
		world.Step()
	}
	before := slices.Clone(world.grid.cells)
	display := world.CopyCells(nil)
	tick := world.Tick()

	world.Inject(16, 4, 2, Water)
	boom := errors.New("boom")
	world.sched.runner = failingRunner{next: world.sched, fail: func(cx, cy int) error {
		if cx == 1 {
			return boom
		}
		return nil
	}}
	err := world.StepContext(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected the fault to surface, got %v", err)
	}
	if !slices.Equal(before, world.grid.cells) {
		t.Fatal("failed tick must leave the grid unchanged")
	}
	if !slices.Equal(display, world.CopyCells(nil)) {
		t.Fatal("failed tick must not publish")
	}
	if len(world.pending) != 1 {
		t.Fatalf("input should be requeued, %d ops pending", len(world.pending))
	}

	world.sched.runner = world.sched
	if err := world.StepContext(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if world.Tick() != tick+1 || world.Stats().Injected == 0 {
		t.Fatal("retry should apply the queued injection")
	}
}

func TestStepRecordsPanicAsError(t *testing.T) {
	world := newTestWorld(16, 16, nil)
	world.grid.Set(3, 3, Cell{Material: Sand})
	world.sched.runner = failingRunner{next: world.sched, fail: func(cx, cy int) error { panic("bad rule") }}
	world.Step()
	if world.Err() == nil {
		t.Fatal("panicking strip must be reported")
	}
	if world.grid.Material(3, 3) != Sand {
		t.Fatal("panicking tick must be rolled back")
	}
	if lines := world.Status(); !strings.HasPrefix(lines[len(lines)-1], "error:") {
		t.Fatalf("status should show the failure, got %q", lines)
	}

	world.sched.runner = world.sched
	world.Step()
	if world.Err() != nil {
		t.Fatalf("a successful tick should clear the error, got %v", world.Err())
	}
	for _, line := range world.Status() {
		if strings.HasPrefix(line, "error:") {
			t.Fatalf("status still reports %q", line)
		}
	}
}

func TestCanceledContext(t *testing.T) {
	world := newTestWorld(8, 8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := world.StepContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if world.Tick() != 0 {
		t.Fatal("canceled tick must not advance")
	}
}

func TestDrainRemovesMobileMatter(t *testing.T) {
	world := newTestWorld(32, 16, func(c *Config) {
		c.Params.DrainHalfWidth = 3
	})
	for y := 8; y < 16; y++ {
		for x := 0; x < 32; x++ {
			world.grid.Set(x, y, Cell{Material: Water})
		}
	}
	world.grid.Set(16, 15, Cell{Material: Stone})
	start := world.Census()

	world.SetDrain(true)
	if !world.Drain() {
		t.Fatal("Drain should report the queued request")
	}
	drained := 0
	for i := 0; i < 400; i++ {
		world.Step()
		drained += world.Stats().Drained
	}
	end := world.Census()
	if drained == 0 {
		t.Fatal("drain removed nothing")
	}
	if end.Of(Stone) != 1 || world.grid.Material(16, 15) != Stone {
		t.Fatal("drain must keep static materials")
	}
	if start.Matter()-drained != end.Matter() {
		t.Fatalf("matter %d - drained %d != %d", start.Matter(), drained, end.Matter())
	}
	r := world.DrainRect()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if m := world.grid.Material(x, y); m != Empty && m != Stone {
				t.Fatalf("drain cell (%d,%d) holds %v", x, y, m)
			}
		}
	}

	world.SetDrain(false)
	world.Step()
	if world.Drain() {
		t.Fatal("drain should be closed")
	}
}

func TestDrainRectClipped(t *testing.T) {
	world := newTestWorld(10, 6, func(c *Config) {
		c.Params.DrainHalfWidth = 20
		c.Params.DrainDepth = 2
	})
	if got := world.DrainRect(); got.Dx() != 10 || got.Min.Y != 4 || got.Max.Y != 6 {
		t.Fatalf("DrainRect() = %v", got)
	}
}

func TestResetDeterministic(t *testing.T) {
	world := newTestWorld(48, 32, func(c *Config) { c.Layout = "basin" })
	world.Reset(5)
	first := world.CopyCells(nil)
	for i := 0; i < 20; i++ {
		pour(world, i)
		world.Step()
	}
	world.Reset(5)
	if !slices.Equal(first, world.CopyCells(nil)) {
		t.Fatal("Reset with the same seed must rebuild the same scene")
	}
	if world.Tick() != 0 || world.Drain() {
		t.Fatal("Reset must clear tick and drain state")
	}
}

func TestRegisteredSims(t *testing.T) {
	world := NewWithConfig(FromMap(map[string]string{"w": "20", "h": "10", "layout": "basin"}))
	if world.Name() != "sand-basin" {
		t.Fatalf("Name() = %q", world.Name())
	}
	if s := world.Size(); s.W != 20 || s.H != 10 {
		t.Fatalf("Size() = %+v", s)
	}
	if len(world.Cells()) != 200 {
		t.Fatalf("Cells() length %d", len(world.Cells()))
	}
	if len(world.Palette()) != 256 {
		t.Fatal("palette must cover every display byte")
	}
}

func TestSetIntParameter(t *testing.T) {
	world := newTestWorld(16, 16, nil)
	if !world.SetIntParameter("brush", 99) || world.BrushRadius() != 32 {
		t.Fatalf("brush should clamp to 32, got %d", world.BrushRadius())
	}
	if !world.SetIntParameter("workers", 3) || world.sched.Workers() != 3 {
		t.Fatal("workers update not applied")
	}
	if world.SetIntParameter("chunk", 4) {
		t.Fatal("chunk size is not adjustable at runtime")
	}
	if p, ok := world.Parameters().Lookup("workers"); !ok || p.Value != "3" {
		t.Fatalf("parameter snapshot workers = %+v", p)
	}
}

func TestStatusReportsSleep(t *testing.T) {
	world := newTestWorld(8, 8, nil)
	runUntilAsleep(t, world, 10)
	lines := world.Status()
	if len(lines) == 0 || lines[0] != "tick 2 (asleep)" {
		t.Fatalf("Status() = %q", lines)
	}
}

func TestFloorPoolDrainsCompletely(t *testing.T) {
	world := newTestWorld(64, 24, func(c *Config) {
		c.Params.DrainHalfWidth = 4
	})
	for i := 0; i < 40; i++ {
		world.Inject(12, 2, 2, Water)
		world.Step()
	}
	runUntilAsleep(t, world, 5000)
	if world.Census().Of(Water) == 0 {
		t.Fatal("expected a pool before opening the drain")
	}

	world.SetDrain(true)
	runUntilAsleep(t, world, 5000)
	if left := world.Census().Of(Water); left != 0 {
		t.Fatalf("%d water cells stranded with the drain open", left)
	}
}

func TestErasedGapReleasesRestingLiquid(t *testing.T) {
	world := newTestWorld(10, 1, nil)
	limit := uint8(world.cfg.Params.SpreadLimit)
	for x := 0; x < 10; x++ {
		world.grid.Set(x, 0, Cell{Material: Water, Spread: limit})
	}
	runUntilAsleep(t, world, 10)

	world.Erase(5, 0, 0)
	world.Step()
	if world.grid.Material(5, 0) != Empty || world.Stats().Erased != 1 {
		t.Fatal("erase should open a gap")
	}
	for _, x := range []int{4, 6} {
		if got := world.grid.Get(x, 0).Spread; got != limit-1 {
			t.Fatalf("cell %d spread = %d, want %d", x, got, limit-1)
		}
	}

	runUntilAsleep(t, world, 100)
	if world.Census().Of(Water) != 9 || world.grid.Material(5, 0) != Water {
		t.Fatal("a neighbour should flow into the gap")
	}
	left, right := world.grid.Material(0, 0), world.grid.Material(9, 0)
	if (left == Empty) == (right == Empty) {
		t.Fatalf("the gap should travel to one edge, got %v and %v", left, right)
	}
}

func TestGranularSlabSettlesWithinFallHeight(t *testing.T) {
	const depth = 4
	for _, h := range []int{32, 64, 128} {
		world := newTestWorld(64, h, nil)
		for y := 0; y < depth; y++ {
			for x := 0; x < 64; x++ {
				world.grid.Set(x, y, Cell{Material: Sand})
			}
		}
		ticks := runUntilAsleep(t, world, 10*h)
		if bound := h + world.cfg.Params.RegionLinger + depth; ticks > bound {
			t.Fatalf("h=%d: settled after %d ticks, want at most %d", h, ticks, bound)
		}
		for y := h - depth; y < h; y++ {
			for x := 0; x < 64; x++ {
				if world.grid.Material(x, y) != Sand {
					t.Fatalf("h=%d: (%d,%d) holds %v after settling", h, x, y, world.grid.Material(x, y))
				}
			}
		}
	}
}

func TestSandAboveOpenDrainDisappears(t *testing.T) {
	world := newTestWorld(32, 24, func(c *Config) {
		c.Params.DrainHalfWidth = 8
	})
	world.SetDrain(true)
	world.Step()
	world.Inject(16, 3, 2, Sand)
	world.Step()

	prev := world.Census().Of(Sand)
	if prev == 0 {
		t.Fatal("no sand injected")
	}
	decreased := false
	for i := 0; i < 200 && prev > 0; i++ {
		world.Step()
		n := world.Census().Of(Sand)
		if n > prev {
			t.Fatalf("tick %d: sand grew from %d to %d", world.Tick(), prev, n)
		}
		if n < prev {
			decreased = true
		}
		prev = n
	}
	if !decreased || prev != 0 {
		t.Fatalf("sand should drain away, %d grains left", prev)
	}
}

func TestMovesNeverShareADestination(t *testing.T) {
	for _, layout := range []string{"", "basin"} {
		world := newTestWorld(48, 40, func(c *Config) { c.Layout = layout })
		for i := 0; i < 200; i++ {
			if i < 80 {
				pour(world, i)
			}
			world.Step()
			if world.Err() != nil {
				t.Fatalf("layout %q: step failed: %v", layout, world.Err())
			}
			if world.Stats().Asleep {
				continue
			}
			seen := make(map[int]bool)
			for _, st := range world.sched.strips {
				for k := 1; k < len(st.edits); k += 2 {
					to := st.edits[k].idx
					if seen[to] {
						t.Fatalf("layout %q tick %d: two moves into cell %d", layout, world.Tick(), to)
					}
					seen[to] = true
				}
			}
			if len(seen) != world.Stats().Moves {
				t.Fatalf("layout %q tick %d: %d destinations for %d moves", layout, world.Tick(), len(seen), world.Stats().Moves)
			}
		}
	}
}

func TestMaterialStaysInsideGrid(t *testing.T) {
	const w, h = 24, 16
	cases := []struct{ x, y int }{
		{0, 0},
		{w - 1, 0},
		{-3, 5},
		{w + 2, h - 1},
		{w / 2, h + 1},
		{w - 1, h - 1},
	}
	for _, tc := range cases {
		world := newTestWorld(w, h, nil)
		injected := 0
		for i := 0; i < 6; i++ {
			world.Inject(tc.x, tc.y, 3, Sand)
			world.Inject(tc.x, tc.y, 2, Water)
			world.Step()
			injected += world.Stats().Injected
		}
		for i := 0; i < 300; i++ {
			world.Step()
		}
		if len(world.grid.cells) != w*h {
			t.Fatalf("(%d,%d): grid resized to %d cells", tc.x, tc.y, len(world.grid.cells))
		}
		if got := world.Census().Matter(); got != injected {
			t.Fatalf("(%d,%d): %d cells in the grid, %d injected", tc.x, tc.y, got, injected)
		}
		snap := world.Snapshot()
		for x := -1; x <= w; x++ {
			if snap.At(x, -1) != Wall || snap.At(x, h) != Wall {
				t.Fatalf("(%d,%d): outside row at x=%d is not wall", tc.x, tc.y, x)
			}
		}
	}
}
