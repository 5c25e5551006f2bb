package search

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before raw input becomes effective.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer turns a stream of raw input into effective values after a quiet period.
// It is safe for concurrent use.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	fn        func(string)
	timer     *time.Timer
	raw       string
	effective string
	stopped   bool
	// gen identifies the live timer; a fire from an older one is dropped.
	gen uint64
}

// NewDebouncer creates a debouncer that calls fn with each effective value.
func NewDebouncer(delay time.Duration, fn func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Push records raw input and restarts the quiet period.
func (d *Debouncer) Push(raw string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushLocked(raw)
}

func (d *Debouncer) pushLocked(raw string) {
	if d.stopped {
		return
	}
	d.raw = raw
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || d.raw == d.effective {
		d.mu.Unlock()
		return
	}
	d.effective = d.raw
	v := d.effective
	d.mu.Unlock()

	d.fn(v)
}

// Flush makes the pending raw input effective immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.mu.Unlock()
	d.fire(gen)
}

// IsPending reports whether raw input has not yet become effective.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw != d.effective
}

// Raw returns the latest pushed input.
func (d *Debouncer) Raw() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw
}

// Effective returns the latest value handed to fn.
func (d *Debouncer) Effective() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.effective
}

// Stop cancels any pending timer. Later pushes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
