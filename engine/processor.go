package engine

import (
	"sync/atomic"

	"in-tune/midi"
	"in-tune/scale"
)

// Fault is an event that could not be processed and was dropped.
type Fault struct {
	Event midi.Event
	Err   error
}

func (f Fault) Error() string {
	return f.Event.String() + ": " + f.Err.Error()
}

// Result is the outcome of one event. Forward is false for suppressed
// events; Err is set for malformed ones.
type Result struct {
	Event   midi.Event
	Forward bool
	Err     error
}

// Stats counts processed events since startup.
type Stats struct {
	Events     uint64
	Forwarded  uint64
	Suppressed uint64
	Faults     uint64
	LostFaults uint64 // faults dropped because the fault channel was full
}

// Processor remaps one batch of events per cycle.
type Processor struct {
	store  *Store
	notes  *NoteTable
	faults chan<- Fault

	events     atomic.Uint64
	forwarded  atomic.Uint64
	suppressed atomic.Uint64
	faultCount atomic.Uint64
	lostFaults atomic.Uint64

	onSnapshot func() // called right after the batch snapshot is taken
}

// NewProcessor wires a processor to its store and note table. faults may be
// nil, in which case faults are only counted.
func NewProcessor(store *Store, notes *NoteTable, faults chan<- Fault) *Processor {
	return &Processor{store: store, notes: notes, faults: faults}
}

// Process appends the surviving events of in to out, in order, and returns
// out. All events of the batch see the same config.
func (p *Processor) Process(in []midi.Event, out []midi.Event) []midi.Event {
	cfg := p.store.Snapshot()
	if p.onSnapshot != nil {
		p.onSnapshot()
	}

	for _, ev := range in {
		r := p.Step(cfg, ev)
		p.events.Add(1)
		switch {
		case r.Err != nil:
			p.report(Fault{Event: ev, Err: r.Err})
		case r.Forward:
			p.forwarded.Add(1)
			out = append(out, r.Event)
		default:
			p.suppressed.Add(1)
		}
	}
	return out
}

// Step resolves a single event against cfg, updating the note table.
func (p *Processor) Step(cfg *scale.Config, ev midi.Event) Result {
	if err := ev.Validate(); err != nil {
		return Result{Event: ev, Err: err}
	}
	if !ev.IsNote() {
		return Result{Event: ev, Forward: true}
	}

	if ev.IsRelease() {
		out, ok := p.notes.NoteOff(ev.Note)
		if !ok {
			return Result{Event: ev}
		}
		ev.Note = out
		return Result{Event: ev, Forward: true}
	}

	out, ok := Map(cfg, midi.NoteOn, ev.Note)
	if !ok {
		return Result{Event: ev}
	}
	if err := p.notes.NoteOn(ev.Note, out, ev.Channel); err != nil {
		return Result{Event: ev, Err: err}
	}
	ev.Note = out
	return Result{Event: ev, Forward: true}
}

func (p *Processor) report(f Fault) {
	p.faultCount.Add(1)
	if p.faults == nil {
		return
	}
	select {
	case p.faults <- f:
	default:
		p.lostFaults.Add(1)
	}
}

// Stats returns a snapshot of the counters.
func (p *Processor) Stats() Stats {
	return Stats{
		Events:     p.events.Load(),
		Forwarded:  p.forwarded.Load(),
		Suppressed: p.suppressed.Load(),
		Faults:     p.faultCount.Load(),
		LostFaults: p.lostFaults.Load(),
	}
}
