package engine_test

import (
	"fmt"
	"testing"

	"in-tune/engine"
	"in-tune/midi"
	"in-tune/scale"
)

var major = []uint8{0, 2, 4, 5, 7, 9, 11}

func TestMapBypassIsIdentity(t *testing.T) {
	for _, cfg := range []*scale.Config{nil, scale.Bypass(), scale.New(24, false, major), scale.New(24, true, nil)} {
		for p := 0; p < 128; p++ {
			got, ok := engine.Map(cfg, midi.NoteOn, uint8(p))
			if !ok || got != uint8(p) {
				t.Fatalf("Map(%v, NoteOn, %d) = %d, %v; want identity", cfg, p, got, ok)
			}
		}
	}
}

func TestMapWorkedExample(t *testing.T) {
	cfg := scale.New(24, true, major)
	var tests = []struct {
		in   uint8
		want uint8
	}{
		{60, 48},
		{61, 50},
		{62, 52},
		{66, 59},
		{12, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.in), func(t *testing.T) {
			got, ok := engine.Map(cfg, midi.NoteOn, tt.in)
			if !ok || got != tt.want {
				t.Errorf("Map(%d) = %d, %v; want %d", tt.in, got, ok, tt.want)
			}
		})
	}
}

func TestMapPitchClass(t *testing.T) {
	for key := 12; key < 24; key++ {
		cfg := scale.New(uint8(key), true, major)
		for p := 0; p < 128; p++ {
			degree := p % 12
			got, ok := engine.Map(cfg, midi.NoteOn, uint8(p))
			if degree >= len(major) {
				if ok {
					t.Fatalf("key %d pitch %d: degree %d must be suppressed, got %d", key, p, degree, got)
				}
				continue
			}
			if !ok {
				// only the range check may suppress a valid degree
				raw := (p/12)*12 + key%12 - 12 + int(major[degree])
				if raw >= 0 && raw <= 127 {
					t.Fatalf("key %d pitch %d suppressed but %d is in range", key, p, raw)
				}
				continue
			}
			if want := (key%12 + int(major[degree])) % 12; int(got)%12 != want {
				t.Fatalf("key %d pitch %d -> %d: pitch-class %d, want %d", key, p, got, got%12, want)
			}
		}
	}
}

func TestMapSuppression(t *testing.T) {
	var tests = []struct {
		name      string
		key       uint8
		intervals []uint8
		cmd       midi.Command
		pitch     uint8
	}{
		{"degree past table", 12, []uint8{0, 2, 4}, midi.NoteOn, 63},
		{"below zero", 12, major, midi.NoteOn, 0},
		{"above 127", 23, []uint8{0, 2, 4, 5, 7, 9, 11, 12}, midi.NoteOn, 127},
		{"large offset", 12, []uint8{200}, midi.NoteOn, 60},
		{"note off", 12, major, midi.NoteOff, 60},
		{"cc", 12, major, midi.CC, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scale.New(tt.key, true, tt.intervals)
			if got, ok := engine.Map(cfg, tt.cmd, tt.pitch); ok {
				t.Errorf("Map = %d, want suppressed", got)
			}
		})
	}
}

func TestMapOffsetsBeyondOctave(t *testing.T) {
	cfg := scale.New(12, true, []uint8{0, 14})
	got, ok := engine.Map(cfg, midi.NoteOn, 61)
	if !ok || got != 62 {
		t.Errorf("Map(61) = %d, %v; want 62", got, ok)
	}
}

func cfgCMajor() *scale.Config {
	return scale.New(24, true, major)
}
