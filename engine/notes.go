package engine

import (
	"errors"
	"fmt"
	"sync"

	"in-tune/midi"
)

// ErrPitchRange is returned for an incoming pitch above 127.
var ErrPitchRange = errors.New("pitch out of range")

type noteEntry struct {
	out     uint8
	channel uint8
	live    bool
}

// NoteTable remembers, per incoming pitch, the pitch its NoteOn was forwarded
// as. The array is fixed so the audio path never allocates.
type NoteTable struct {
	mu      sync.Mutex
	entries [128]noteEntry
	count   int
}

// NewNoteTable creates an empty table
func NewNoteTable() *NoteTable {
	return &NoteTable{}
}

// NoteOn records that in was forwarded as out, replacing any earlier entry.
func (t *NoteTable) NoteOn(in, out, channel uint8) error {
	if in > 127 {
		return fmt.Errorf("%w: %d", ErrPitchRange, in)
	}
	t.mu.Lock()
	if !t.entries[in].live {
		t.count++
	}
	t.entries[in] = noteEntry{out: out, channel: channel, live: true}
	t.mu.Unlock()
	return nil
}

// NoteOff removes and returns the entry for in.
func (t *NoteTable) NoteOff(in uint8) (uint8, bool) {
	if in > 127 {
		return 0, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entries[in]
	if !e.live {
		return 0, false
	}
	t.entries[in] = noteEntry{}
	t.count--
	return e.out, true
}

// Lookup returns the entry for in without removing it.
func (t *NoteTable) Lookup(in uint8) (uint8, bool) {
	if in > 127 {
		return 0, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entries[in]
	return e.out, e.live
}

// Clear forgets every entry. Held notes are not released downstream.
func (t *NoteTable) Clear() {
	t.mu.Lock()
	t.entries = [128]noteEntry{}
	t.count = 0
	t.mu.Unlock()
}

// Release clears the table and appends a NoteOff for every live entry.
func (t *NoteTable) Release(dst []midi.Event, frame int32) []midi.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		e := t.entries[i]
		if !e.live {
			continue
		}
		dst = append(dst, midi.Event{
			Command: midi.NoteOff,
			Channel: e.channel,
			Note:    e.out,
			Frame:   frame,
		})
		t.entries[i] = noteEntry{}
	}
	t.count = 0
	return dst
}

// Len returns the number of sounding notes.
func (t *NoteTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
