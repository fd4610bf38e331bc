package engine

import (
	"context"
	"log/slog"
	"sync"
)

// Diagnostics drains faults off the audio path, logs them and remembers the
// most recent ones for display.
type Diagnostics struct {
	faults <-chan Fault
	log    *slog.Logger

	mu   sync.Mutex
	ring []Fault
	next int
	full bool
}

// NewDiagnostics keeps the last size faults read from faults.
func NewDiagnostics(faults <-chan Fault, size int, log *slog.Logger) *Diagnostics {
	if size < 1 {
		size = 1
	}
	return &Diagnostics{faults: faults, log: log, ring: make([]Fault, size)}
}

// Run reads faults until ctx is done or the channel closes (blocking - run in goroutine)
func (d *Diagnostics) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-d.faults:
			if !ok {
				return
			}
			d.Record(f)
		}
	}
}

// Record logs f and adds it to the ring.
func (d *Diagnostics) Record(f Fault) {
	if d.log != nil {
		d.log.Warn("event dropped", "event", f.Event.String(), "err", f.Err)
	}
	d.mu.Lock()
	d.ring[d.next] = f
	d.next = (d.next + 1) % len(d.ring)
	if d.next == 0 {
		d.full = true
	}
	d.mu.Unlock()
}

// Recent returns remembered faults, oldest first.
func (d *Diagnostics) Recent() []Fault {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.full {
		return append([]Fault(nil), d.ring[:d.next]...)
	}
	out := make([]Fault, 0, len(d.ring))
	out = append(out, d.ring[d.next:]...)
	return append(out, d.ring[:d.next]...)
}
