// Package debounce coalesces bursts of triggers into a single delivery.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is used when a non-positive delay is requested.
const DefaultDelay = 150 * time.Millisecond

// Debouncer delivers the most recent trigger key once no new trigger has
// arrived for the configured delay. A key still waiting in C is replaced by
// a newer one.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending string
	armed   bool
	// gen identifies the latest Trigger; timers from older ones are stale.
	gen     uint64
	stopped bool
	out     chan string
}

// New returns a debouncer with the given quiet period.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay: delay,
		out:   make(chan string, 1),
	}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// C delivers coalesced keys. It is closed by Stop.
func (d *Debouncer) C() <-chan string {
	return d.out
}

// Trigger records key and restarts the quiet period.
func (d *Debouncer) Trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = key
	d.armed = true
	d.gen++

	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.flush(gen) })
}

// flush delivers the pending key unless a later Trigger restarted the quiet
// period. A timer whose Stop came too late still runs, so gen is checked
// under the lock.
func (d *Debouncer) flush(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || !d.armed || gen != d.gen {
		return
	}
	key := d.pending
	d.armed = false

	select {
	case d.out <- key:
	default:
		// Drop the stale key nobody has read yet.
		select {
		case <-d.out:
		default:
		}
		d.out <- key
	}
}

// Pending reports whether a trigger is waiting for its quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Stop discards any pending trigger and closes C. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.out)
}
