package debounce

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of calls for the same key into a single delayed
// action carrying the latest parameters. Cancellation and execution are
// mutually exclusive for a given scheduled instance: a replaced action never
// runs even if its timer already fired and is waiting on the lock.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	gen     uint64
	pending map[string]*pendingAction
	closed  bool
}

type pendingAction struct {
	timer     *time.Timer
	gen       uint64
	cancelled func()
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingAction),
	}
}

// Schedule queues fn to run after the debounce delay. A pending action for
// the same key is cancelled and its cancelled callback (if any) is invoked.
// The cancelled callback of this call fires if it is later replaced or the
// debouncer shuts down first.
func (d *Debouncer) Schedule(key string, fn func(), cancelled func()) {
	d.mu.Lock()

	if d.closed {
		d.mu.Unlock()
		if cancelled != nil {
			cancelled()
		}
		return
	}

	var replaced func()
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
		replaced = prev.cancelled
	}

	d.gen++
	gen := d.gen
	timer := time.AfterFunc(d.delay, func() {
		d.fire(key, gen, fn)
	})
	d.pending[key] = &pendingAction{timer: timer, gen: gen, cancelled: cancelled}
	d.mu.Unlock()

	if replaced != nil {
		replaced()
	}
}

func (d *Debouncer) fire(key string, gen uint64, fn func()) {
	d.mu.Lock()
	current, ok := d.pending[key]
	if !ok || current.gen != gen {
		// Replaced or cancelled between timer fire and lock acquisition.
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	fn()
}

// Cancel drops the pending action for key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	prev, ok := d.pending[key]
	if ok {
		prev.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok && prev.cancelled != nil {
		prev.cancelled()
	}
}

// Len reports the number of pending actions.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close cancels every pending action and rejects further scheduling.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	dropped := make([]*pendingAction, 0, len(d.pending))
	for key, prev := range d.pending {
		prev.timer.Stop()
		dropped = append(dropped, prev)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, prev := range dropped {
		if prev.cancelled != nil {
			prev.cancelled()
		}
	}
}
