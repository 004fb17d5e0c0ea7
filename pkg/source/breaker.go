package source

import (
	"context"
	"errors"
	"sync"
	"time"
)

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	// BreakerClosed lets every fetch through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects fetches until the cooldown elapses.
	BreakerOpen
	// BreakerHalfOpen lets one probe through to test recovery.
	BreakerHalfOpen
)

// String returns the string representation of the state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("source unavailable")

// Breaker stops calling a failing source after maxFailures consecutive
// failures and retries once cooldown has passed.
type Breaker struct {
	maxFailures int
	cooldown    time.Duration
	now         func() time.Time

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
}

// NewBreaker creates a closed breaker. maxFailures below 1 is treated as 1.
func NewBreaker(maxFailures int, cooldown time.Duration) *Breaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Breaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset closes the breaker.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failures = 0
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = BreakerHalfOpen
		return true
	case BreakerHalfOpen:
		// one probe at a time
		return false
	default:
		return true
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.state = BreakerClosed
		b.failures = 0
		return
	}
	// Cancellation says nothing about the source.
	if errors.Is(err, context.Canceled) {
		if b.state == BreakerHalfOpen {
			b.state = BreakerOpen
		}
		return
	}

	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= b.maxFailures {
		b.state = BreakerOpen
		b.openedAt = b.now()
	}
}

// WithBreaker guards fetcher with b. A nil breaker returns fetcher unchanged.
func WithBreaker[T any](fetcher Fetcher[T], b *Breaker) Fetcher[T] {
	if b == nil {
		return fetcher
	}
	return FetcherFunc[T](func(ctx context.Context) ([]T, error) {
		if !b.allow() {
			return nil, ErrUnavailable
		}
		records, err := fetcher.Fetch(ctx)
		b.record(err)
		return records, err
	})
}
