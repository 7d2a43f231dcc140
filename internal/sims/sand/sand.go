package sand

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"sandfall/internal/core"
)

// Stats summarises the most recent tick.
type Stats struct {
	Tick uint32
	// ActiveChunks is the size of the region processed this tick.
	ActiveChunks int
	Moves        int
	Injected     int
	Erased       int
	Drained      int
	Asleep       bool
	Elapsed      time.Duration
}

// World is a falling-sand simulation session. It owns the grid exclusively:
// input is queued and applied at tick start, and renderers only see the
// snapshot published after a tick has fully committed.
type World struct {
	cfg Config

	grid    *Grid
	tracker *Tracker
	sched   *Scheduler
	rng     *core.RNG

	tick  uint32
	drain bool
	stats Stats
	err   error

	pending  []inputOp
	applied  []inputOp
	inputLog []edit
	drainReq *bool

	mu      sync.RWMutex
	display []uint8
	back    []uint8
}

// New returns a sand world with the provided dimensions using defaults.
func New(w, h int) *World {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg)
}

// NewWithConfig returns a world configured from the provided options. Invalid
// values are coerced; call Config.Validate first to reject them instead.
func NewWithConfig(cfg Config) *World {
	cfg = cfg.normalize()
	p := cfg.Params
	grid := NewGrid(cfg.Width, cfg.Height)
	tracker := NewTracker(grid.W, grid.H, p.ChunkSize, p.RegionLinger)
	w := &World{
		cfg:     cfg,
		grid:    grid,
		tracker: tracker,
		sched:   NewScheduler(grid, tracker, p.Workers, cfg.Seed, p.LiquidReach, p.SpreadLimit),
		rng:     core.NewRNG(cfg.Seed),
		display: make([]uint8, grid.W*grid.H),
		back:    make([]uint8, grid.W*grid.H),
	}
	w.Reset(0)
	return w
}

// Name returns the simulation identifier.
func (w *World) Name() string {
	if w.cfg.Layout == "" {
		return "sand"
	}
	return "sand-" + w.cfg.Layout
}

// Size reports the grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.grid.W, H: w.grid.H} }

// Config returns the configuration the world runs with.
func (w *World) Config() Config { return w.cfg }

// Grid exposes the live grid. It must not be touched while a tick runs.
func (w *World) Grid() *Grid { return w.grid }

// Reset clears the grid and paints the configured layout. A zero seed
// reuses the configured one.
func (w *World) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	w.grid.Clear()
	w.tracker.Reset()
	w.sched.Reseed(effective)
	w.rng.Reseed(uint64(effective), 0)
	w.pending = w.pending[:0]
	w.drainReq = nil
	w.drain = false
	w.sched.SetDrain(image.Rectangle{})
	w.tick = 0
	w.stats = Stats{}
	w.err = nil

	layouts[w.cfg.Layout](w.grid, w.rng)
	w.tracker.WakeAll()
	w.publish()
}

// Step advances the simulation by one tick. A failed tick leaves the grid
// unchanged and is reported by Err until a tick succeeds.
func (w *World) Step() {
	w.err = w.StepContext(context.Background())
}

// Err returns the error of the last tick run by Step, if it failed.
func (w *World) Err() error { return w.err }

// StepContext advances the simulation by one tick: pending input is applied,
// the active region is updated in parallel, the drain runs and the region for
// the next tick is derived from everything that changed.
func (w *World) StepContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	w.tick++
	st := Stats{Tick: w.tick}

	w.inputLog = w.inputLog[:0]
	w.applyInput(&st)

	st.ActiveChunks = w.tracker.ActiveChunks()
	if w.tracker.Empty() {
		st.Asleep = true
	} else {
		moves, err := w.sched.Run(ctx, w.tick)
		if err != nil {
			w.undoInput()
			w.tick--
			return err
		}
		st.Moves = moves
		w.sched.Touched(w.touch)
	}
	for _, e := range w.inputLog {
		w.touch(e.idx)
	}

	if w.drain {
		st.Drained = w.applyDrain()
	}

	w.tracker.Advance()
	w.publish()
	st.Elapsed = time.Since(start)
	w.stats = st
	return nil
}

// touch wakes the neighbourhood of a written cell and lets resting fluids
// beside it flow into any space the write opened.
func (w *World) touch(idx int) {
	w.tracker.Mark(idx%w.grid.W, idx/w.grid.W)
	w.sched.Release(idx, w.tick, w.tracker.Mark)
}

// undoInput restores the cells written by this tick's input and requeues the
// operations ahead of anything queued since.
func (w *World) undoInput() {
	for i := len(w.inputLog) - 1; i >= 0; i-- {
		e := w.inputLog[i]
		w.grid.cells[e.idx] = e.prev
	}
	w.inputLog = w.inputLog[:0]
	w.pending = append(append([]inputOp(nil), w.applied...), w.pending...)
}

// Tick returns the number of ticks run since the last reset.
func (w *World) Tick() uint32 { return w.tick }

// Stats returns the statistics of the last tick.
func (w *World) Stats() Stats { return w.stats }

// Census counts the cells of every material.
func (w *World) Census() Counts { return w.grid.Census() }

// Asleep reports whether the next tick will skip the update pass.
func (w *World) Asleep() bool { return w.tracker.Empty() && len(w.pending) == 0 && w.drainReq == nil }

// ActiveRects returns the region the next tick will process.
func (w *World) ActiveRects() []image.Rectangle { return w.tracker.Rects() }

// ActiveBounds returns the bounding box of the next tick's region.
func (w *World) ActiveBounds() image.Rectangle { return w.tracker.Bounds() }

// InRegion reports whether cell (x, y) will be processed next tick.
func (w *World) InRegion(x, y int) bool { return w.tracker.Contains(x, y) }

// Status summarises the last tick for display.
func (w *World) Status() []string {
	st := w.stats
	state := "awake"
	if w.Asleep() {
		state = "asleep"
	}
	drain := "closed"
	if w.Drain() {
		drain = "open"
	}
	c := w.Census()
	lines := []string{
		fmt.Sprintf("tick %d (%s)", st.Tick, state),
		fmt.Sprintf("moves %d  chunks %d", st.Moves, st.ActiveChunks),
		fmt.Sprintf("step %s", st.Elapsed.Round(10*time.Microsecond)),
		fmt.Sprintf("drain %s  drained %d", drain, st.Drained),
	}
	for _, id := range Placeable() {
		lines = append(lines, fmt.Sprintf("%s %d", id, c.Of(id)))
	}
	if w.err != nil {
		lines = append(lines, "error: "+w.err.Error())
	}
	return lines
}

// BrushRadius returns the configured brush radius.
func (w *World) BrushRadius() int { return w.cfg.Params.BrushRadius }

// SprayTries returns the configured spray sample count.
func (w *World) SprayTries() int { return w.cfg.Params.SprayTries }

func init() {
	core.Register("sand", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
	core.Register("sand-basin", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		c.Layout = "basin"
		return NewWithConfig(c)
	})
}
