package midi

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Command is the status nibble of a channel message.
type Command uint8

// MIDI message types
const (
	NoteOff         Command = 0x80
	NoteOn          Command = 0x90
	PolyPressure    Command = 0xA0
	CC              Command = 0xB0
	ProgramChange   Command = 0xC0
	ChannelPressure Command = 0xD0
	PitchBend       Command = 0xE0
)

// ErrMalformed marks an event whose fields are out of MIDI range.
var ErrMalformed = errors.New("malformed event")

// Event is one channel message inside a processing block
type Event struct {
	Command  Command
	Channel  uint8
	Note     uint8 // pitch for note events, first data byte otherwise
	Velocity uint8 // second data byte
	Frame    int32 // sample offset within the block
}

// IsNote reports whether the event is a NoteOn or NoteOff.
func (e Event) IsNote() bool {
	return e.Command == NoteOn || e.Command == NoteOff
}

// IsRelease reports whether the event ends a note: a NoteOff, or a NoteOn
// with zero velocity.
func (e Event) IsRelease() bool {
	return e.Command == NoteOff || (e.Command == NoteOn && e.Velocity == 0)
}

// Validate checks ranges of the fields.
func (e Event) Validate() error {
	if e.Command < NoteOff || e.Command > PitchBend || e.Command&0x0F != 0 {
		return fmt.Errorf("%w: status %#x", ErrMalformed, uint8(e.Command))
	}
	if e.Channel > 15 {
		return fmt.Errorf("%w: channel %d", ErrMalformed, e.Channel)
	}
	if e.Note > 127 || e.Velocity > 127 {
		return fmt.Errorf("%w: data %d %d", ErrMalformed, e.Note, e.Velocity)
	}
	return nil
}

func (e Event) String() string {
	switch e.Command {
	case NoteOn:
		return fmt.Sprintf("NoteOn ch=%d note=%d vel=%d @%d", e.Channel, e.Note, e.Velocity, e.Frame)
	case NoteOff:
		return fmt.Sprintf("NoteOff ch=%d note=%d vel=%d @%d", e.Channel, e.Note, e.Velocity, e.Frame)
	}
	return fmt.Sprintf("%#x ch=%d %d %d @%d", uint8(e.Command), e.Channel, e.Note, e.Velocity, e.Frame)
}

// FromBytes decodes a raw channel message. ok is false for system messages
// and short buffers; those never enter the engine.
func FromBytes(data []byte, frame int32) (Event, bool) {
	if len(data) < 2 {
		return Event{}, false
	}
	status := data[0]
	if status < 0x80 || status >= 0xF0 {
		return Event{}, false
	}
	ev := Event{
		Command: Command(status & 0xF0),
		Channel: status & 0x0F,
		Note:    data[1],
		Frame:   frame,
	}
	if len(data) > 2 {
		ev.Velocity = data[2]
	}
	return ev, true
}

// FromMessage decodes a gomidi message.
func FromMessage(msg gomidi.Message, frame int32) (Event, bool) {
	return FromBytes(msg.Bytes(), frame)
}

// Bytes encodes the event as a raw channel message into dst.
func (e Event) Bytes(dst []byte) []byte {
	status := uint8(e.Command) | e.Channel&0x0F
	switch e.Command {
	case ProgramChange, ChannelPressure:
		return append(dst, status, e.Note)
	}
	return append(dst, status, e.Note, e.Velocity)
}

// Message encodes the event as a gomidi message.
func (e Event) Message() gomidi.Message {
	switch e.Command {
	case NoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	case NoteOff:
		return gomidi.NoteOffVelocity(e.Channel, e.Note, e.Velocity)
	}
	return gomidi.Message(e.Bytes(nil))
}
