package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Task represents one unit of work processed by the pool.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc is the function signature for processing a single task.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency. Parsing is
// safe to run concurrently because every parse invocation builds its own
// context; the pool fans file entries out across workers.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a new worker pool.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Execute runs all inputs through the pool and returns results in input
// order. Honors context cancellation.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))
	inputCh := make(chan int, len(inputs))

	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-inputCh:
					if !ok {
						return
					}
					result, err := p.process(ctx, inputs[idx])
					results[idx] = Task[T, R]{
						Input:  inputs[idx],
						Result: result,
						Err:    err,
					}
					if err != nil {
						log.Error().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
					}
				}
			}
		}(w)
	}

	fed := len(inputs)
feed:
	for i := range inputs {
		select {
		case <-ctx.Done():
			fed = i
			break feed
		case inputCh <- i:
		}
	}
	close(inputCh)

	wg.Wait()

	// Tasks the workers never reached carry the cancellation error, so
	// callers cannot mistake them for completed work.
	for idx := range inputCh {
		results[idx] = Task[T, R]{Input: inputs[idx], Err: ctx.Err()}
	}
	for i := fed; i < len(inputs); i++ {
		results[i] = Task[T, R]{Input: inputs[i], Err: ctx.Err()}
	}

	return results
}
