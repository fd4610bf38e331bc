package midi

import (
	"errors"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrPortsTimeout is returned when the MIDI system does not answer a port
// listing in time.
var ErrPortsTimeout = errors.New("listing MIDI ports timed out")

// ListPorts returns the current ports, giving up after timeout (CoreMIDI can hang).
func ListPorts(timeout time.Duration) ([]drivers.In, []drivers.Out, error) {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		inPorts := gomidi.GetInPorts()
		outPorts := gomidi.GetOutPorts()
		ch <- portsResult{inPorts: inPorts, outPorts: outPorts}
	}()

	select {
	case r := <-ch:
		return r.inPorts, r.outPorts, nil
	case <-time.After(timeout):
		return nil, nil, ErrPortsTimeout
	}
}

// Selector picks a port by name.
type Selector struct {
	Pattern   string   // exact name or case-insensitive substring
	Preferred []string // tried in order when Pattern is empty
	Excluded  []string // never picked
}

// Pick returns the index of the chosen name, or -1. Without a pattern or a
// preferred match, a sole candidate is taken.
func (s Selector) Pick(names []string) int {
	var candidates []int
	for i, n := range names {
		if !s.excluded(n) {
			candidates = append(candidates, i)
		}
	}
	if s.Pattern != "" {
		for _, i := range candidates {
			if names[i] == s.Pattern {
				return i
			}
		}
		for _, i := range candidates {
			if containsCI(names[i], s.Pattern) {
				return i
			}
		}
		return -1
	}
	for _, pat := range s.Preferred {
		for _, i := range candidates {
			if containsCI(names[i], pat) {
				return i
			}
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return -1
}

func (s Selector) excluded(name string) bool {
	for _, pat := range s.Excluded {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// InNames returns the port names.
func InNames(ports []drivers.In) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names
}

// OutNames returns the port names.
func OutNames(ports []drivers.Out) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names
}
