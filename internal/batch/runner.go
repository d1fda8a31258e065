// Package batch provides the pacing primitive for outbound platform calls.
//
// A [Runner] applies an operation to every item in an ordered list, fanning
// out at most Size concurrent calls at a time and pausing for Delay between
// consecutive groups. This bounds peak concurrency to Size and sustained
// call rate to Size/Delay, which is how marquee stays inside each
// platform's documented request ceiling.
//
// Operations are expected to absorb their own failures and return a
// sentinel "miss" value (nil pointer, empty slice); the runner never aborts
// a batch because one item failed.
package batch

import (
	"context"
	"sync"
	"time"
)

// Runner executes operations over fixed-size groups with an inter-group
// pause. The zero value is not usable; construct with [NewRunner].
type Runner[T, R any] struct {
	size  int
	delay time.Duration
	pause func(context.Context, time.Duration) error
}

// NewRunner creates a Runner that fans out size concurrent operations per
// group and sleeps for delay between groups. A size below 1 is treated as 1.
func NewRunner[T, R any](size int, delay time.Duration) *Runner[T, R] {
	if size < 1 {
		size = 1
	}
	return &Runner[T, R]{size: size, delay: delay, pause: sleep}
}

// Run applies op to every item and returns results aligned with the input:
// len(results) == len(items) and results[i] corresponds to items[i], even
// when op returns a miss sentinel.
//
// Items within one group run concurrently; groups run strictly in sequence
// with a pause after every group except the last. If ctx is cancelled
// mid-run, remaining items are left at their zero value and the partial
// result slice is returned.
func (r *Runner[T, R]) Run(ctx context.Context, items []T, op func(context.Context, T) R) []R {
	results := make([]R, len(items))

	for start := 0; start < len(items); start += r.size {
		end := min(start+r.size, len(items))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = op(ctx, items[idx])
			}(i)
		}
		wg.Wait()

		if end < len(items) {
			if err := r.pause(ctx, r.delay); err != nil {
				break
			}
		}
	}

	return results
}

// Groups returns how many sequential groups Run would issue for n items.
func (r *Runner[T, R]) Groups(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + r.size - 1) / r.size
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
