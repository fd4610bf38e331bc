package midi

import (
	"fmt"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

type stampedEvent struct {
	ev  Event
	raw gomidi.Message // set for system messages, which bypass the engine
	ms  int32
}

// Input listens on a MIDI in port and queues messages until the next block
// drains them. System messages share the queue so they keep their place in
// the stream: Drain stops in front of one, and FlushThru sends it once the
// events before it have been delivered.
type Input struct {
	id         string
	inPort     drivers.In
	stopFunc   func()
	events     chan stampedEvent
	sampleRate int
	thru       func(gomidi.Message)
	dropped    atomic.Uint64

	held    *stampedEvent // channel event read past a system message
	pending []gomidi.Message
}

// OpenInput opens inPort and starts listening. buffer bounds how many events
// may wait between blocks; beyond that, messages are dropped.
func OpenInput(inPort drivers.In, sampleRate, buffer int, thru func(gomidi.Message)) (*Input, error) {
	if buffer < 1 {
		buffer = 256
	}
	in := &Input{
		id:         inPort.String(),
		inPort:     inPort,
		events:     make(chan stampedEvent, buffer),
		sampleRate: sampleRate,
		thru:       thru,
	}

	if !inPort.IsOpen() {
		if err := inPort.Open(); err != nil {
			return nil, fmt.Errorf("open input %q: %w", in.id, err)
		}
	}

	opts := []gomidi.Option{}
	if thru != nil {
		opts = append(opts, gomidi.UseSysEx())
	}
	stop, err := gomidi.ListenTo(inPort, in.HandleMessage, opts...)
	if err != nil {
		inPort.Close()
		return nil, fmt.Errorf("listen %q: %w", in.id, err)
	}
	in.stopFunc = stop
	return in, nil
}

// HandleMessage is the gomidi receiver.
func (in *Input) HandleMessage(msg gomidi.Message, timestampms int32) {
	m := stampedEvent{ms: timestampms}
	ev, ok := FromMessage(msg, 0)
	if ok {
		m.ev = ev
	} else {
		if in.thru == nil {
			return
		}
		m.raw = append(gomidi.Message(nil), msg...)
	}
	select {
	case in.events <- m: // if the channel is full, just drop the message
	default:
		in.dropped.Add(1)
	}
}

// Drain appends queued channel events to dst, up to the next system message.
// Frames are sample offsets from the first event of the batch.
func (in *Input) Drain(dst []Event) []Event {
	first := true
	var base int64
	add := func(m stampedEvent) {
		frame := int64(m.ms) * int64(in.sampleRate) / 1000
		if first {
			base, first = frame, false
		}
		m.ev.Frame = int32(frame - base)
		dst = append(dst, m.ev)
	}

	if in.held != nil {
		add(*in.held)
		in.held = nil
	}
	for {
		select {
		case m := <-in.events:
			if m.raw == nil {
				add(m)
				continue
			}
			in.pending = append(in.pending, m.raw)
			// take the run of system messages, keep the next channel event for later
			for {
				select {
				case n := <-in.events:
					if n.raw != nil {
						in.pending = append(in.pending, n.raw)
						continue
					}
					in.held = &n
				default:
				}
				return dst
			}
		default:
			return dst
		}
	}
}

// FlushThru sends the system messages Drain stopped at. Call it after the
// drained batch has been delivered.
func (in *Input) FlushThru() {
	for _, msg := range in.pending {
		in.thru(msg)
	}
	clear(in.pending)
	in.pending = in.pending[:0]
}

// ID is the port name.
func (in *Input) ID() string {
	return in.id
}

// Dropped counts messages lost to a full queue.
func (in *Input) Dropped() uint64 {
	return in.dropped.Load()
}

func (in *Input) Close() error {
	if in.stopFunc != nil {
		in.stopFunc()
	}
	return in.inPort.Close()
}
