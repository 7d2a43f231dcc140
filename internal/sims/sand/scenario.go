package sand

import (
	"context"
	"time"
)

// SettleResult summarises a settle run.
type SettleResult struct {
	Ticks   int
	Moves   int
	Asleep  bool
	Elapsed time.Duration
	Cells   []uint8
}

// Settle pours a fixed mix of materials across the top of a world built from
// cfg for pours ticks, then steps until the world sleeps or limit ticks have
// run in total. The pour pattern depends only on the grid size, so runs with
// different scheduling parameters are comparable.
func Settle(ctx context.Context, cfg Config, pours, limit int) (SettleResult, error) {
	w := NewWithConfig(cfg)
	ids := []MaterialID{Sand, Water, Oil, Sand, Steam}
	radius := max(w.grid.W/40, 1)
	var res SettleResult
	start := time.Now()
	for res.Ticks < limit {
		if res.Ticks < pours {
			id := ids[res.Ticks%len(ids)]
			x := (res.Ticks*37 + 11) % w.grid.W
			w.Inject(x, radius+1, radius, id)
		} else if w.Asleep() {
			res.Asleep = true
			break
		}
		if err := w.StepContext(ctx); err != nil {
			return res, err
		}
		res.Ticks++
		res.Moves += w.stats.Moves
	}
	res.Elapsed = time.Since(start)
	res.Cells = w.CopyCells(nil)
	return res, nil
}
