package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/san-kum/adexsim/internal/adexp"
)

// Job is one independent simulation. Recorder, Controller and Integrator
// must not be shared with other jobs of the same batch.
type Job struct {
	Spikes     SpikeVec
	Recorder   Recorder
	Controller Controller
	Integrator Integrator
	Params     adexp.WorkingParameters
	Config     Config
}

// RunBatch simulates jobs on up to workers goroutines (NumCPU when
// workers <= 0). Jobs not started before ctx is canceled are skipped, leaving
// a zero Result (Steps == 0), and ctx.Err() is returned alongside the
// partial results.
func RunBatch(ctx context.Context, jobs []Job, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(jobs))

	results := make([]Result, len(jobs))
	next := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range next {
				j := jobs[idx]
				results[idx] = Simulate(j.Spikes, j.Recorder, j.Controller, j.Integrator, j.Params, j.Config)
			}
		}()
	}

	var err error
feed:
	for i := range jobs {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case next <- i:
		}
	}
	close(next)
	wg.Wait()

	return results, err
}
