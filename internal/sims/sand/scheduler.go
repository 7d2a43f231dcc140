package sand

import (
	"context"
	"image"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"sandfall/internal/core"
)

// phases is the number of sequential passes per tick. Strips are chunk
// columns; a strip runs in phase cx%phases so concurrently running strips are
// always at least one strip apart.
const phases = 2

// edit is one undo entry: the cell at idx held prev before the write.
type edit struct {
	idx  int
	prev Cell
}

// strip is the work unit for one chunk column. Only the goroutine running
// the strip touches its fields during a phase.
type strip struct {
	cx    int
	rng   *core.RNG
	edits []edit
	moves int
}

// chunkRunner updates every cell of chunk (cx, cy) belonging to st.
type chunkRunner interface {
	runChunk(st *strip, cx, cy int, tick uint32) error
}

// Scheduler advances every active cell by one tick in parallel.
type Scheduler struct {
	grid    *Grid
	tracker *Tracker
	workers int
	seed    uint64

	reach       int
	spreadLimit uint8

	// drain holds the open drain; resting liquids step toward its columns.
	drain image.Rectangle

	strips []*strip
	runner chunkRunner
}

// NewScheduler prepares a scheduler over g using tr's chunk layout. workers
// <= 0 selects GOMAXPROCS.
func NewScheduler(g *Grid, tr *Tracker, workers int, seed int64, reach, spreadLimit int) *Scheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if reach < 1 {
		reach = 1
	}
	if spreadLimit <= 0 || spreadLimit > 255 {
		spreadLimit = 255
	}
	cols, _ := tr.Chunks()
	s := &Scheduler{
		grid:        g,
		tracker:     tr,
		workers:     workers,
		seed:        uint64(seed),
		reach:       reach,
		spreadLimit: uint8(spreadLimit),
		strips:      make([]*strip, cols),
	}
	for cx := range s.strips {
		s.strips[cx] = &strip{cx: cx, rng: core.NewStreamRNG(s.seed, uint64(cx))}
	}
	s.runner = s
	return s
}

// Workers returns the size of the worker pool.
func (s *Scheduler) Workers() int { return s.workers }

// SetWorkers resizes the worker pool used by later ticks.
func (s *Scheduler) SetWorkers(n int) {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	s.workers = n
}

// Reseed changes the base seed of every strip generator.
func (s *Scheduler) Reseed(seed int64) { s.seed = uint64(seed) }

// SetDrain sets the open drain area; an empty rectangle closes it.
func (s *Scheduler) SetDrain(r image.Rectangle) { s.drain = r }

// Run executes one tick over the tracker's active region and returns the
// number of moves. On failure every write of the tick is undone before the
// error is returned, so the grid keeps its last committed state.
func (s *Scheduler) Run(ctx context.Context, tick uint32) (int, error) {
	for _, st := range s.strips {
		st.edits = st.edits[:0]
		st.moves = 0
	}
	tickSeed := s.seed + uint64(tick)*0x9e3779b97f4a7c15

	for phase := 0; phase < phases; phase++ {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for cx := phase; cx < len(s.strips); cx += phases {
			if !s.tracker.ColumnActive(cx) {
				continue
			}
			st := s.strips[cx]
			st.rng.Reseed(tickSeed, uint64(cx))
			g.Go(func() error { return s.runStrip(gctx, st, tick) })
		}
		if err := g.Wait(); err != nil {
			s.rollback()
			return 0, errors.Wrapf(err, "tick %d phase %d", tick, phase)
		}
	}

	moves := 0
	for _, st := range s.strips {
		moves += st.moves
	}
	return moves, nil
}

// Touched calls fn with the index of every cell written during the last Run.
func (s *Scheduler) Touched(fn func(idx int)) {
	for _, st := range s.strips {
		for _, e := range st.edits {
			fn(e.idx)
		}
	}
}

func (s *Scheduler) runStrip(ctx context.Context, st *strip, tick uint32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("strip %d: %v", st.cx, r)
		}
	}()

	_, rows := s.tracker.Chunks()
	for cy := 0; cy < rows; cy++ {
		if !s.tracker.ChunkActive(st.cx, cy) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "strip %d", st.cx)
		}
		if err := s.runner.runChunk(st, st.cx, cy, tick); err != nil {
			return errors.Wrapf(err, "strip %d chunk %d", st.cx, cy)
		}
	}
	return nil
}

func (s *Scheduler) runChunk(st *strip, cx, cy int, tick uint32) error {
	chunk := s.tracker.ChunkSize()
	x0, y0 := cx*chunk, cy*chunk
	x1 := min(x0+chunk, s.grid.W)
	y1 := min(y0+chunk, s.grid.H)
	for y := y0; y < y1; y++ {
		if st.rng.Bool() {
			for x := x0; x < x1; x++ {
				s.update(st, x, y, tick)
			}
		} else {
			for x := x1 - 1; x >= x0; x-- {
				s.update(st, x, y, tick)
			}
		}
	}
	return nil
}

// rollback replays the undo logs newest first. Strips of one phase touch
// disjoint cells, so only the phase order matters.
func (s *Scheduler) rollback() {
	cells := s.grid.cells
	for phase := phases - 1; phase >= 0; phase-- {
		for cx := phase; cx < len(s.strips); cx += phases {
			st := s.strips[cx]
			for i := len(st.edits) - 1; i >= 0; i-- {
				e := st.edits[i]
				cells[e.idx] = e.prev
			}
			st.edits = st.edits[:0]
			st.moves = 0
		}
	}
}
