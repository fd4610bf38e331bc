// Package host drives the engine on a fixed block clock, standing in for an
// audio host when running as a standalone MIDI-through.
package host

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"in-tune/midi"
)

// Source yields the events that arrived since the last block.
type Source interface {
	Drain(dst []midi.Event) []midi.Event
}

// Sink transports a processed block.
type Sink interface {
	Deliver(events []midi.Event) error
}

// Processor rewrites a block of events.
type Processor interface {
	Process(in []midi.Event, out []midi.Event) []midi.Event
}

const (
	DefaultBlockSize  = 256
	DefaultSampleRate = 48000
	maxBlockEvents    = 512
)

// Runner moves one block per cycle from Source through Processor to Sink.
type Runner struct {
	src  Source
	sink Sink
	proc Processor
	log  *slog.Logger

	blockSize  int
	sampleRate int

	in  []midi.Event
	out []midi.Event

	cycles    atomic.Uint64
	sinkFails atomic.Uint64
	lastErr   string
}

// NewRunner creates a runner. Non-positive sizes fall back to defaults.
func NewRunner(src Source, sink Sink, proc Processor, blockSize, sampleRate int, log *slog.Logger) *Runner {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Runner{
		src:        src,
		sink:       sink,
		proc:       proc,
		log:        log,
		blockSize:  blockSize,
		sampleRate: sampleRate,
		in:         make([]midi.Event, 0, maxBlockEvents),
		out:        make([]midi.Event, 0, maxBlockEvents),
	}
}

// BlockDuration is the wall-clock length of one block.
func (r *Runner) BlockDuration() time.Duration {
	return time.Duration(r.blockSize) * time.Second / time.Duration(r.sampleRate)
}

// Cycle processes one block and returns what was delivered. The slice is
// reused by the next cycle.
func (r *Runner) Cycle() []midi.Event {
	r.in = r.src.Drain(r.in[:0])
	r.out = r.proc.Process(r.in, r.out[:0])
	r.cycles.Add(1)

	if err := r.sink.Deliver(r.out); err != nil {
		r.sinkFails.Add(1)
		// only log when the failure changes, a missing port fails every block
		if msg := err.Error(); msg != r.lastErr {
			r.lastErr = msg
			r.log.Warn("host: delivery failed", "err", err)
		}
	} else {
		r.lastErr = ""
	}
	return r.out
}

// Run cycles once per block until ctx is done (blocking - run in goroutine)
func (r *Runner) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ticker := time.NewTicker(r.BlockDuration())
	defer ticker.Stop()

	r.log.Info("host: running", "block", r.blockSize, "rate", r.sampleRate, "period", r.BlockDuration())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Cycle()
		}
	}
}

// Cycles counts completed blocks.
func (r *Runner) Cycles() uint64 {
	return r.cycles.Load()
}

// SinkFailures counts blocks whose delivery failed.
func (r *Runner) SinkFailures() uint64 {
	return r.sinkFails.Load()
}
