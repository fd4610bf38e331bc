package midi

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func newTestInput(buffer int, thru func(gomidi.Message)) *Input {
	return &Input{
		id:         "test",
		events:     make(chan stampedEvent, buffer),
		sampleRate: 48000,
		thru:       thru,
	}
}

func TestInputDrain(t *testing.T) {
	in := newTestInput(2, func(gomidi.Message) {})

	in.HandleMessage(gomidi.NoteOn(0, 60, 100), 1000)
	in.HandleMessage(gomidi.NoteOff(0, 60), 1002)
	in.HandleMessage(gomidi.NoteOn(0, 62, 100), 1003)

	if in.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", in.Dropped())
	}
	got := in.Drain(nil)
	want := []Event{
		{Command: NoteOn, Note: 60, Velocity: 100, Frame: 0},
		{Command: NoteOff, Note: 60, Frame: 96},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Drain = %v, want %v", got, want)
	}
	if got := in.Drain(nil); len(got) != 0 {
		t.Errorf("second Drain = %v", got)
	}
}

func TestInputSystemMessagesKeepOrder(t *testing.T) {
	var thru []gomidi.Message
	in := newTestInput(8, func(m gomidi.Message) { thru = append(thru, m) })

	in.HandleMessage(gomidi.NoteOn(0, 60, 100), 1000)
	in.HandleMessage(gomidi.Message{0xF8}, 1001)
	in.HandleMessage(gomidi.Message{0xFA}, 1001)
	in.HandleMessage(gomidi.NoteOn(0, 62, 100), 1002)
	in.HandleMessage(gomidi.NoteOn(0, 64, 100), 1003)

	if got := in.Drain(nil); len(got) != 1 || got[0].Note != 60 {
		t.Fatalf("first Drain = %v, want only note 60", got)
	}
	if len(thru) != 0 {
		t.Fatalf("system messages sent before the batch: %v", thru)
	}
	in.FlushThru()
	if len(thru) != 2 || thru[0][0] != 0xF8 || thru[1][0] != 0xFA {
		t.Fatalf("thru = % x", thru)
	}
	got := in.Drain(nil)
	want := []Event{
		{Command: NoteOn, Note: 62, Velocity: 100, Frame: 0},
		{Command: NoteOn, Note: 64, Velocity: 100, Frame: 48},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("second Drain = %v, want %v", got, want)
	}
	in.FlushThru()
	if len(thru) != 2 {
		t.Errorf("thru sent twice: % x", thru)
	}
}

func TestInputWithoutThruDropsSystemMessages(t *testing.T) {
	in := newTestInput(4, nil)
	in.HandleMessage(gomidi.Message{0xF8}, 0)
	in.HandleMessage(gomidi.NoteOn(0, 60, 1), 0)
	if got := in.Drain(nil); len(got) != 1 {
		t.Errorf("Drain = %v", got)
	}
	in.FlushThru()
}

func TestOutputDeliver(t *testing.T) {
	var sent [][]byte
	fail := errors.New("unplugged")
	o := NewOutputFunc("test", func(m gomidi.Message) error {
		if m.Bytes()[1] == 61 {
			return fail
		}
		sent = append(sent, m.Bytes())
		return nil
	})

	err := o.Deliver([]Event{
		{Command: NoteOn, Note: 60, Velocity: 1},
		{Command: NoteOn, Note: 61, Velocity: 1},
		{Command: NoteOn, Note: 62, Velocity: 1},
	})
	if !errors.Is(err, fail) {
		t.Errorf("Deliver err = %v", err)
	}
	if len(sent) != 2 {
		t.Errorf("sent %d messages, want 2", len(sent))
	}
	if err := o.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestManagerWithoutPorts(t *testing.T) {
	dm := NewDeviceManager(ManagerConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if got := dm.Drain(nil); len(got) != 0 {
		t.Errorf("Drain = %v", got)
	}
	if err := dm.Deliver(nil); err != nil {
		t.Errorf("Deliver(nil) = %v", err)
	}
	if err := dm.Deliver([]Event{{Command: NoteOn, Note: 60, Velocity: 1}}); !errors.Is(err, ErrNoOutput) {
		t.Errorf("Deliver = %v, want ErrNoOutput", err)
	}
	if in, out := dm.Status(); in != "" || out != "" {
		t.Errorf("Status() = %q, %q", in, out)
	}
}

func TestManagerDeliversInArrivalOrder(t *testing.T) {
	var sent []byte
	dm := NewDeviceManager(ManagerConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	dm.output = NewOutputFunc("out", func(m gomidi.Message) error {
		sent = append(sent, m.Bytes()[0], m.Bytes()[1])
		return nil
	})
	dm.input = newTestInput(8, dm.sendRaw)

	dm.input.HandleMessage(gomidi.NoteOn(0, 60, 100), 0)
	dm.input.HandleMessage(gomidi.Message{0xF2, 0x10, 0x00}, 1) // song position
	dm.input.HandleMessage(gomidi.NoteOff(0, 60), 2)

	for i := 0; i < 2; i++ {
		if err := dm.Deliver(dm.Drain(nil)); err != nil {
			t.Fatal(err)
		}
	}
	want := []byte{0x90, 60, 0xF2, 0x10, 0x80, 60}
	if !reflect.DeepEqual(sent, want) {
		t.Errorf("sent % x, want % x", sent, want)
	}
}
