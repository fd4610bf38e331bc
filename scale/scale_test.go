package scale_test

import (
	"reflect"
	"testing"

	"in-tune/scale"
)

func TestBypass(t *testing.T) {
	var tests = []struct {
		name string
		cfg  *scale.Config
		want bool
	}{
		{"nil", nil, true},
		{"shared", scale.Bypass(), true},
		{"no key", scale.New(0, false, []uint8{0, 2, 4}), true},
		{"no intervals", scale.New(12, true, nil), true},
		{"empty intervals", scale.New(12, true, []uint8{}), true},
		{"active", scale.New(12, true, []uint8{0, 2, 4}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Bypass(); got != tt.want {
				t.Errorf("Bypass() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewCopiesIntervals(t *testing.T) {
	iv := []uint8{0, 2, 4}
	c := scale.New(12, true, iv)
	iv[1] = 99
	if got := c.Interval(1); got != 2 {
		t.Fatalf("Interval(1) = %d after caller mutation, want 2", got)
	}
	out := c.Intervals()
	out[0] = 42
	if got := c.Interval(0); got != 0 {
		t.Fatalf("Interval(0) = %d after mutating Intervals(), want 0", got)
	}
}

func TestRoot(t *testing.T) {
	for key := 0; key < 256; key++ {
		c := scale.New(uint8(key), true, []uint8{0})
		if got := c.Root(); got != key%12 {
			t.Fatalf("Root() for key %d = %d, want %d", key, got, key%12)
		}
	}
}

func TestContains(t *testing.T) {
	d := scale.New(14, true, []uint8{0, 2, 4, 5, 7, 9, 11}) // D major
	want := map[int]bool{2: true, 4: true, 6: true, 7: true, 9: true, 11: true, 1: true}
	for pc := 0; pc < 12; pc++ {
		if got := d.Contains(pc); got != want[pc] {
			t.Errorf("Contains(%d) = %v, want %v", pc, got, want[pc])
		}
	}
	if !scale.Bypass().Contains(3) {
		t.Errorf("bypass must contain every pitch-class")
	}
}

func TestEqualAndString(t *testing.T) {
	a := scale.New(12, true, []uint8{0, 2, 4})
	b := scale.New(12, true, []uint8{0, 2, 4})
	c := scale.New(13, true, []uint8{0, 2, 4})
	if !a.Equal(b) || a.Equal(c) {
		t.Errorf("Equal: a==b %v, a==c %v", a.Equal(b), a.Equal(c))
	}
	if !scale.Bypass().Equal(scale.New(5, false, nil)) {
		t.Errorf("two bypass configs must be equal")
	}
	if got := a.String(); got != "C [0 2 4]" {
		t.Errorf("String() = %q", got)
	}
	if got := scale.Bypass().String(); got != "bypass" {
		t.Errorf("String() = %q", got)
	}
	if !reflect.DeepEqual(a.Intervals(), []uint8{0, 2, 4}) {
		t.Errorf("Intervals() = %v", a.Intervals())
	}
}

func TestFindKey(t *testing.T) {
	var tests = []struct {
		name string
		root uint8
		ok   bool
	}{
		{"C", 12, true},
		{"c", 12, true},
		{"Db", 13, true},
		{"C#/Db", 13, true},
		{" a#", 22, true},
		{"B", 23, true},
		{"H", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, ok := scale.FindKey(tt.name)
			if ok != tt.ok || (ok && k.Root != tt.root) {
				t.Errorf("FindKey(%q) = %v, %v; want root %d, %v", tt.name, k, ok, tt.root, tt.ok)
			}
		})
	}
}

func TestPitchName(t *testing.T) {
	var tests = []struct {
		pitch int
		want  string
	}{
		{60, "C4"},
		{61, "C#4"},
		{0, "C-1"},
		{127, "G9"},
		{128, "?128"},
	}
	for _, tt := range tests {
		if got := scale.PitchName(tt.pitch); got != tt.want {
			t.Errorf("PitchName(%d) = %q, want %q", tt.pitch, got, tt.want)
		}
	}
}
