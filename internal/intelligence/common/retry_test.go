package common

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestRetry_RecoverableFailureThenSuccess(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestRetry_ContextCancellationStopsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, fastPolicy(5), func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetry_PermanentErrorStopsImmediately(t *testing.T) {
	rejected := errors.New("invalid request")
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(5), func(ctx context.Context) (int, error) {
		calls++
		return 0, Permanent(rejected)
	})
	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, 1, calls)
}

func TestFanOut_PreservesSubmissionOrder(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	results := FanOut(context.Background(), 3, items, func(ctx context.Context, index int, item string) (string, error) {
		// Later items finish first to exercise the join ordering.
		time.Sleep(time.Duration(len(items)-index) * time.Millisecond)
		return item + "!", nil
	})

	assert.Len(t, results, len(items))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.NoError(t, r.Err)
		assert.Equal(t, items[i]+"!", r.Result)
	}
}

func TestFanOut_DuplicatesProcessedIndependently(t *testing.T) {
	var calls int32
	items := []string{"484 PC", "484 PC", "484 PC"}
	results := FanOut(context.Background(), 2, items, func(ctx context.Context, index int, item string) (int, error) {
		atomic.AddInt32(&calls, 1)
		return index, nil
	})

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	for i, r := range results {
		assert.Equal(t, i, r.Result)
	}
}

func TestFanOut_ConcurrencyLimit(t *testing.T) {
	var current, peak int32
	items := make([]int, 10)
	FanOut(context.Background(), 2, items, func(ctx context.Context, index int, item int) (int, error) {
		cur := atomic.AddInt32(&current, 1)
		defer atomic.AddInt32(&current, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return 0, nil
	})
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestFanOut_PerItemErrorsDoNotAbortBatch(t *testing.T) {
	boom := errors.New("boom")
	items := []int{0, 1, 2}
	results := FanOut(context.Background(), 3, items, func(ctx context.Context, index int, item int) (int, error) {
		if index == 1 {
			return 0, boom
		}
		return item * 10, nil
	})

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 20, results[2].Result)
}

func TestFanOut_PanicIsCaptured(t *testing.T) {
	items := []int{0, 1}
	results := FanOut(context.Background(), 2, items, func(ctx context.Context, index int, item int) (int, error) {
		if index == 0 {
			panic("bad item")
		}
		return 7, nil
	})
	assert.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "panicked")
	assert.Equal(t, 7, results[1].Result)
}

func TestFanOut_EmptyInput(t *testing.T) {
	results := FanOut(context.Background(), 4, nil, func(ctx context.Context, index int, item int) (int, error) {
		return 0, nil
	})
	assert.Empty(t, results)
}
