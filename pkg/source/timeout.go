package source

import (
	"context"
	"errors"
	"time"
)

// WithTimeout wraps fetcher so that each Fetch gives up after timeout.
// A non-positive timeout returns fetcher unchanged.
func WithTimeout[T any](fetcher Fetcher[T], timeout time.Duration) Fetcher[T] {
	if timeout <= 0 {
		return fetcher
	}
	return FetcherFunc[T](func(ctx context.Context) ([]T, error) {
		return fetchWithTimeout(ctx, timeout, fetcher)
	})
}

type fetchResult[T any] struct {
	records []T
	err     error
}

func fetchWithTimeout[T any](ctx context.Context, timeout time.Duration, fetcher Fetcher[T]) ([]T, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan fetchResult[T], 1)
	go func() {
		records, err := fetcher.Fetch(timeoutCtx)
		done <- fetchResult[T]{records: records, err: err}
	}()

	select {
	case res := <-done:
		return res.records, res.err
	case <-timeoutCtx.Done():
		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, timeoutCtx.Err()
	}
}
