// Package debounce delays delivery of rapidly changing values until they
// have been stable for a quiet period.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer delivers the most recent pushed value once no newer value has
// arrived for the quiet period. Intermediate values are dropped.
type Debouncer[T any] struct {
	quiet time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	value   T
	stopped bool
}

// New returns a Debouncer that calls fn with the settled value. Cancelling
// ctx has the same effect as Stop.
func New[T any](ctx context.Context, quiet time.Duration, fn func(T)) *Debouncer[T] {
	d := &Debouncer[T]{quiet: quiet, fn: fn}
	context.AfterFunc(ctx, d.Stop)
	return d
}

// Push replaces any pending value with v and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.gen++
	gen := d.gen
	d.value = v
	d.pending = true

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.mu.Unlock()

	d.fn(v)
}

// Flush delivers the pending value immediately, if there is one.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	v := d.value
	d.pending = false
	d.mu.Unlock()

	d.fn(v)
}

// Pending reports whether a value is waiting for its quiet period.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop drops any pending value. Later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
