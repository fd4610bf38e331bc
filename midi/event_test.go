package midi_test

import (
	"errors"
	"reflect"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"in-tune/midi"
)

func TestFromBytes(t *testing.T) {
	var tests = []struct {
		name string
		data []byte
		want midi.Event
		ok   bool
	}{
		{"note on", []byte{0x93, 60, 100}, midi.Event{Command: midi.NoteOn, Channel: 3, Note: 60, Velocity: 100, Frame: 5}, true},
		{"note off", []byte{0x80, 61, 0}, midi.Event{Command: midi.NoteOff, Note: 61, Frame: 5}, true},
		{"program change", []byte{0xC1, 7}, midi.Event{Command: midi.ProgramChange, Channel: 1, Note: 7, Frame: 5}, true},
		{"clock", []byte{0xF8, 0}, midi.Event{}, false},
		{"sysex", []byte{0xF0, 0x7E, 0xF7}, midi.Event{}, false},
		{"running status", []byte{60, 100}, midi.Event{}, false},
		{"short", []byte{0x90}, midi.Event{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := midi.FromBytes(tt.data, 5)
			if ok != tt.ok || got != tt.want {
				t.Errorf("FromBytes(% x) = %+v, %v; want %+v, %v", tt.data, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	var tests = []struct {
		ev   midi.Event
		want []byte
	}{
		{midi.Event{Command: midi.NoteOn, Channel: 2, Note: 48, Velocity: 90}, []byte{0x92, 48, 90}},
		{midi.Event{Command: midi.NoteOff, Note: 48, Velocity: 64}, []byte{0x80, 48, 64}},
		{midi.Event{Command: midi.CC, Channel: 15, Note: 64, Velocity: 127}, []byte{0xBF, 64, 127}},
		{midi.Event{Command: midi.ChannelPressure, Note: 30}, []byte{0xD0, 30}},
	}
	for _, tt := range tests {
		if got := tt.ev.Bytes(nil); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%v Bytes() = % x, want % x", tt.ev, got, tt.want)
		}
		if got := tt.ev.Message().Bytes(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%v Message() = % x, want % x", tt.ev, got, tt.want)
		}
	}
}

func TestFromMessage(t *testing.T) {
	ev, ok := midi.FromMessage(gomidi.NoteOn(4, 72, 33), 9)
	want := midi.Event{Command: midi.NoteOn, Channel: 4, Note: 72, Velocity: 33, Frame: 9}
	if !ok || ev != want {
		t.Errorf("FromMessage = %+v, %v", ev, ok)
	}
}

func TestValidate(t *testing.T) {
	var tests = []struct {
		name string
		ev   midi.Event
		ok   bool
	}{
		{"note on", midi.Event{Command: midi.NoteOn, Note: 127, Velocity: 127}, true},
		{"pitch bend", midi.Event{Command: midi.PitchBend, Channel: 15}, true},
		{"status too low", midi.Event{Command: 0x40}, false},
		{"system", midi.Event{Command: 0xF0}, false},
		{"low nibble", midi.Event{Command: 0x91}, false},
		{"channel", midi.Event{Command: midi.NoteOn, Channel: 16}, false},
		{"note", midi.Event{Command: midi.NoteOn, Note: 128}, false},
		{"velocity", midi.Event{Command: midi.NoteOn, Velocity: 200}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v", err)
			}
			if err != nil && !errors.Is(err, midi.ErrMalformed) {
				t.Errorf("Validate() = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestIsRelease(t *testing.T) {
	var tests = []struct {
		ev   midi.Event
		want bool
	}{
		{midi.Event{Command: midi.NoteOff, Velocity: 64}, true},
		{midi.Event{Command: midi.NoteOn}, true},
		{midi.Event{Command: midi.NoteOn, Velocity: 1}, false},
		{midi.Event{Command: midi.CC}, false},
	}
	for _, tt := range tests {
		if got := tt.ev.IsRelease(); got != tt.want {
			t.Errorf("%v IsRelease() = %v, want %v", tt.ev, got, tt.want)
		}
	}
}
