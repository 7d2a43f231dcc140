package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"
	"slices"
	"sort"
	"sync"
	"time"

	"sandfall/internal/sims/sand"
)

type job struct {
	workers int
	chunk   int
}

type benchResult struct {
	job
	res sand.SettleResult
	err error
}

func main() {
	width := flag.Int("width", 320, "grid width for bench runs")
	height := flag.Int("height", 200, "grid height for bench runs")
	seed := flag.Int64("seed", 1337, "seed used for deterministic runs")
	pours := flag.Int("pours", 200, "ticks that pour material")
	limit := flag.Int("limit", 20000, "maximum ticks per run")
	parallel := flag.Int("parallel", 1, "runs executed at once")
	layout := flag.String("layout", "basin", "initial scene")
	flag.Parse()

	base := sand.DefaultConfig()
	base.Width = *width
	base.Height = *height
	base.Seed = *seed
	base.Layout = *layout
	if err := base.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	workerOptions := []int{1, 2, 4, runtime.NumCPU()}
	chunkOptions := []int{8, 16, 32}
	var jobsList []job
	for _, chunk := range chunkOptions {
		if chunk <= base.Params.LiquidReach {
			continue
		}
		for _, w := range slices.Compact(slices.Sorted(slices.Values(workerOptions))) {
			jobsList = append(jobsList, job{workers: w, chunk: chunk})
		}
	}

	fmt.Printf("Benchmarking %d configurations (%dx%d, %d pours, %d parallel)\n", len(jobsList), *width, *height, *pours, *parallel)

	jobs := make(chan job)
	results := make(chan benchResult)
	var wg sync.WaitGroup
	for i := 0; i < max(*parallel, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				cfg := base
				cfg.Params.Workers = j.workers
				cfg.Params.ChunkSize = j.chunk
				res, err := sand.Settle(context.Background(), cfg, *pours, *limit)
				results <- benchResult{job: j, res: res, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	go func() {
		for _, j := range jobsList {
			jobs <- j
		}
		close(jobs)
	}()

	start := time.Now()
	var all []benchResult
	for r := range results {
		if r.err != nil {
			log.Printf("workers=%d chunk=%d failed: %+v", r.workers, r.chunk, r.err)
			continue
		}
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].chunk != all[j].chunk {
			return all[i].chunk < all[j].chunk
		}
		return all[i].workers < all[j].workers
	})

	baselines := map[int][]uint8{}
	for _, r := range all {
		if r.workers == 1 {
			baselines[r.chunk] = r.res.Cells
		}
	}

	fmt.Printf("\n%6s %7s %8s %10s %7s %12s %8s\n", "chunk", "workers", "ticks", "moves", "asleep", "elapsed", "match")
	for _, r := range all {
		match := "-"
		if b, ok := baselines[r.chunk]; ok {
			match = fmt.Sprint(slices.Equal(b, r.res.Cells))
		}
		fmt.Printf("%6d %7d %8d %10d %7v %12s %8s\n",
			r.chunk, r.workers, r.res.Ticks, r.res.Moves, r.res.Asleep, r.res.Elapsed.Round(time.Millisecond), match)
	}
	fmt.Printf("\nTotal elapsed %s\n", time.Since(start).Round(time.Millisecond))
}
