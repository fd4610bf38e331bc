package control_test

import (
	"io"
	"log/slog"
	"testing"

	"in-tune/control"
	"in-tune/scale"
)

type fakeTarget struct {
	configs []*scale.Config
	stops   int
}

func (f *fakeTarget) SetScale(c *scale.Config) { f.configs = append(f.configs, c) }
func (f *fakeTarget) Stop()                    { f.stops++ }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandle(t *testing.T) {
	var tests = []struct {
		msg     string
		stops   int
		configs int
		bypass  bool
	}{
		{"stop", 1, 0, false},
		{"set 12 [0,2,4]", 0, 1, false},
		{"set nope [0,2,4]", 0, 1, true},
		{"set 12 nope", 0, 1, true},
		{"whatever", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			target := &fakeTarget{}
			h := control.NewHandler(target, quietLogger())
			if resp := h.Handle(tt.msg); resp != "" {
				t.Errorf("Handle(%q) = %q, want empty ack", tt.msg, resp)
			}
			if target.stops != tt.stops || len(target.configs) != tt.configs {
				t.Fatalf("stops %d configs %d, want %d %d", target.stops, len(target.configs), tt.stops, tt.configs)
			}
			if tt.configs > 0 && target.configs[0].Bypass() != tt.bypass {
				t.Errorf("Bypass() = %v, want %v", target.configs[0].Bypass(), tt.bypass)
			}
		})
	}
}
