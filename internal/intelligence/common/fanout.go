package common

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ProcessFunc is the signature for processing a single fan-out item.
type ProcessFunc[T, R any] func(ctx context.Context, index int, item T) (R, error)

// ItemResult holds the outcome of one item within a fan-out run. Index is
// the item's position in the input slice; results are always returned in
// input order regardless of completion order.
type ItemResult[R any] struct {
	Index    int           `json:"index"`
	Result   R             `json:"result"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// FanOut runs fn concurrently over items, at most maxConcurrency at a time,
// and joins the results back in submission order. Each invocation receives
// its item's index so callers can correlate with positional annotations.
//
// FanOut itself never fails: per-item errors are captured in the result
// slice, and a cancelled context surfaces as per-item context errors. Items
// are never deduplicated; duplicate inputs occupy independent positions.
func FanOut[T, R any](ctx context.Context, maxConcurrency int, items []T, fn ProcessFunc[T, R]) []ItemResult[R] {
	results := make([]ItemResult[R], len(items))
	if len(items) == 0 {
		return results
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(index int, it T) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[index] = ItemResult[R]{Index: index, Err: ctx.Err()}
				return
			}

			start := time.Now()
			result, err := runGuarded(ctx, index, it, fn)
			results[index] = ItemResult[R]{
				Index:    index,
				Result:   result,
				Err:      err,
				Duration: time.Since(start),
			}
		}(i, item)
	}

	wg.Wait()
	return results
}

// runGuarded invokes fn and converts a panic into an error so one bad item
// cannot take down the whole batch.
func runGuarded[T, R any](ctx context.Context, index int, item T, fn ProcessFunc[T, R]) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fan-out item %d panicked: %v", index, r)
		}
	}()
	return fn(ctx, index, item)
}
