// Package debounce delays a callback until input has been quiet for a fixed period.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used for search boxes.
const DefaultDelay = 500 * time.Millisecond

// Debouncer runs the most recently triggered function once no new trigger has
// arrived for the configured delay. After Stop it never runs anything again.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	gen     uint64
	stopped bool
}

// New creates a Debouncer. A non-positive delay uses DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn, replacing and resetting any pending call.
// It reports false when the debouncer has been stopped.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	d.cancelLocked()
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
	return true
}

// Flush runs the pending call now, if any, and reports whether it ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.cancelLocked()
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the pending call without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Stop cancels the pending call and rejects future triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A timer that fired while being replaced or cancelled is stale.
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}
