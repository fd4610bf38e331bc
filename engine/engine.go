// Package engine remaps note events onto the active scale.
//
// An Engine owns the scale Store, the NoteTable and the Processor. The audio
// context calls Process once per block; the control context calls SetScale
// and Stop. Both sides only ever hold a lock for a pointer swap or a table
// update, so a control write cannot stall a block.
package engine

import (
	"log/slog"
	"sync"

	"in-tune/debug"
	"in-tune/midi"
	"in-tune/scale"
)

const defaultFaultBuffer = 64

// Engine is the remapping core.
type Engine struct {
	store  *Store
	notes  *NoteTable
	proc   *Processor
	faults chan Fault
	log    *slog.Logger

	releaseOnStop bool
	relMu         sync.Mutex
	pending       []midi.Event
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	faultBuffer   int
	log           *slog.Logger
	releaseOnStop bool
}

// WithFaultBuffer sets how many faults may wait for the diagnostics reader.
func WithFaultBuffer(n int) Option {
	return func(o *engineOptions) { o.faultBuffer = n }
}

// WithLogger sets the logger used for control-side messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) { o.log = l }
}

// WithReleaseOnStop makes Stop send a NoteOff for every held note on the
// next block instead of silently forgetting them.
func WithReleaseOnStop(on bool) Option {
	return func(o *engineOptions) { o.releaseOnStop = on }
}

// New creates an engine in bypass state.
func New(opts ...Option) *Engine {
	o := engineOptions{faultBuffer: defaultFaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = debug.Logger()
	}
	if o.faultBuffer < 1 {
		o.faultBuffer = 1
	}

	e := &Engine{
		store:         NewStore(),
		notes:         NewNoteTable(),
		faults:        make(chan Fault, o.faultBuffer),
		log:           o.log,
		releaseOnStop: o.releaseOnStop,
		pending:       make([]midi.Event, 0, 128),
	}
	e.proc = NewProcessor(e.store, e.notes, e.faults)
	return e
}

// Process runs one block. Releases queued by Stop come first, at frame 0.
func (e *Engine) Process(in []midi.Event, out []midi.Event) []midi.Event {
	if e.releaseOnStop {
		e.relMu.Lock()
		out = append(out, e.pending...)
		e.pending = e.pending[:0]
		e.relMu.Unlock()
	}
	return e.proc.Process(in, out)
}

// SetScale installs a new config starting with the next block.
func (e *Engine) SetScale(c *scale.Config) {
	e.store.Replace(c)
	e.log.Info("scale set", "scale", c.String())
}

// Stop returns to bypass and forgets held notes.
func (e *Engine) Stop() {
	e.store.Reset()
	if e.releaseOnStop {
		e.relMu.Lock()
		e.pending = e.notes.Release(e.pending, 0)
		n := len(e.pending)
		e.relMu.Unlock()
		e.log.Info("stopped", "releases", n)
		return
	}
	e.notes.Clear()
	e.log.Info("stopped")
}

// Scale returns the config in effect.
func (e *Engine) Scale() *scale.Config {
	return e.store.Snapshot()
}

// ActiveNotes returns how many notes are sounding downstream.
func (e *Engine) ActiveNotes() int {
	return e.notes.Len()
}

// Lookup returns the outgoing pitch of a held incoming pitch.
func (e *Engine) Lookup(in uint8) (uint8, bool) {
	return e.notes.Lookup(in)
}

// Faults is read by Diagnostics.
func (e *Engine) Faults() <-chan Fault {
	return e.faults
}

// Stats returns processing counters.
func (e *Engine) Stats() Stats {
	return e.proc.Stats()
}
