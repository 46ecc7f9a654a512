package ui

import "sync"

// dispatcher runs user actions one at a time, in the order they were
// posted, off the Bubble Tea event loop. Posting never blocks, so Update
// cannot stall behind a busy handler.
type dispatcher struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

func newDispatcher() *dispatcher {
	return &dispatcher{wake: make(chan struct{}, 1)}
}

func (d *dispatcher) post(fn func()) {
	d.mu.Lock()
	d.pending = append(d.pending, fn)
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// run executes posted actions until done is closed, then runs whatever is
// still pending and returns.
func (d *dispatcher) run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			d.drain()
			return
		case <-d.wake:
			d.drain()
		}
	}
}

func (d *dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.pending) == 0 {
			d.mu.Unlock()
			return
		}
		fn := d.pending[0]
		d.pending[0] = nil
		d.pending = d.pending[1:]
		d.mu.Unlock()
		fn()
	}
}
