// Package dispatch runs a fixed number of independent tasks on a bounded
// worker pool. Results and errors are written into index-addressed slots, so
// the outcome is deterministic regardless of scheduling order, and one
// failing task never aborts the batch.
package dispatch

import (
	"context"
	"sync"
)

// Task computes the value for slot i. Tasks must be independent; they run
// concurrently.
type Task[T any] func(ctx context.Context, i int) (T, error)

// ForEach runs task for every index in [0, total) on at most workers
// goroutines. It blocks until every dispatched task has finished or the
// context is cancelled; slots of tasks that never ran keep ctx.Err() as
// their error. Completed slots stay valid even when later tasks fail.
func ForEach[T any](ctx context.Context, total, workers int, task Task[T]) ([]T, []error) {
	results := make([]T, total)
	errs := make([]error, total)
	if total == 0 {
		return results, errs
	}
	if workers <= 0 || workers > total {
		workers = total
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i], errs[i] = task(ctx, i)
			}
		}()
	}

feed:
	for i := 0; i < total; i++ {
		select {
		case indices <- i:
		case <-ctx.Done():
			// mark everything not yet handed out as cancelled
			for j := i; j < total; j++ {
				errs[j] = ctx.Err()
			}
			break feed
		}
	}
	close(indices)
	wg.Wait()

	return results, errs
}
