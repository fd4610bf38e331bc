package host_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"in-tune/engine"
	"in-tune/host"
	"in-tune/midi"
	"in-tune/scale"
)

type fakeSource struct {
	batches [][]midi.Event
}

func (s *fakeSource) Drain(dst []midi.Event) []midi.Event {
	if len(s.batches) == 0 {
		return dst
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return append(dst, b...)
}

type fakeSink struct {
	got [][]midi.Event
	err error
}

func (s *fakeSink) Deliver(events []midi.Event) error {
	s.got = append(s.got, append([]midi.Event(nil), events...))
	return s.err
}

func TestRunnerCycle(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	eng := engine.New(engine.WithLogger(log))
	eng.SetScale(scale.New(24, true, []uint8{0, 2, 4, 5, 7, 9, 11}))

	src := &fakeSource{batches: [][]midi.Event{
		{{Command: midi.NoteOn, Note: 60, Velocity: 90}, {Command: midi.NoteOn, Note: 61, Velocity: 90, Frame: 12}},
		{{Command: midi.NoteOff, Note: 61}},
	}}
	sink := &fakeSink{}
	r := host.NewRunner(src, sink, eng, 0, 0, log)

	r.Cycle()
	r.Cycle()
	r.Cycle()

	want := [][]midi.Event{
		{{Command: midi.NoteOn, Note: 48, Velocity: 90}, {Command: midi.NoteOn, Note: 50, Velocity: 90, Frame: 12}},
		{{Command: midi.NoteOff, Note: 50}},
		nil,
	}
	if !reflect.DeepEqual(sink.got, want) {
		t.Errorf("delivered %v\nwant %v", sink.got, want)
	}
	if r.Cycles() != 3 || r.SinkFailures() != 0 {
		t.Errorf("Cycles() = %d, SinkFailures() = %d", r.Cycles(), r.SinkFailures())
	}
}

func TestRunnerSinkFailureLoggedOnce(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	sink := &fakeSink{err: errors.New("no port")}
	r := host.NewRunner(&fakeSource{}, sink, engine.New(engine.WithLogger(log)), 64, 48000, log)

	for i := 0; i < 5; i++ {
		r.Cycle()
	}
	if r.SinkFailures() != 5 {
		t.Errorf("SinkFailures() = %d", r.SinkFailures())
	}
	if n := strings.Count(logs.String(), "delivery failed"); n != 1 {
		t.Errorf("logged %d times, want 1", n)
	}
}

func TestBlockDuration(t *testing.T) {
	r := host.NewRunner(&fakeSource{}, &fakeSink{}, engine.New(), 480, 48000, slog.Default())
	if got := r.BlockDuration(); got != 10*time.Millisecond {
		t.Errorf("BlockDuration() = %v", got)
	}
	r = host.NewRunner(&fakeSource{}, &fakeSink{}, engine.New(), 0, 0, slog.Default())
	if got := r.BlockDuration(); got != time.Duration(host.DefaultBlockSize)*time.Second/host.DefaultSampleRate {
		t.Errorf("default BlockDuration() = %v", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	r := host.NewRunner(&fakeSource{}, &fakeSink{}, engine.New(engine.WithLogger(log)), 48, 48000, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
	if r.Cycles() == 0 {
		t.Error("no cycles ran")
	}
}
