package scale

import (
	"fmt"
	"strings"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Key is a selectable root. Root is the value sent over the control protocol.
type Key struct {
	Name string
	Root uint8
}

// Keys lists the twelve roots in the register the control surface sends (C=12).
var Keys = []Key{
	{"C", 12},
	{"C#/Db", 13},
	{"D", 14},
	{"D#/Eb", 15},
	{"E", 16},
	{"F", 17},
	{"F#/Gb", 18},
	{"G", 19},
	{"G#/Ab", 20},
	{"A", 21},
	{"A#/Bb", 22},
	{"B", 23},
}

// KeyName returns the sharp name of a pitch-class.
func KeyName(pc int) string {
	pc %= 12
	if pc < 0 {
		pc += 12
	}
	return noteNames[pc]
}

// FindKey looks a key up by name, accepting either spelling of accidentals.
func FindKey(name string) (Key, bool) {
	name = strings.TrimSpace(name)
	for _, k := range Keys {
		if strings.EqualFold(k.Name, name) {
			return k, true
		}
		for _, alias := range strings.Split(k.Name, "/") {
			if strings.EqualFold(alias, name) {
				return k, true
			}
		}
	}
	return Key{}, false
}

// PitchName renders a pitch as note name and octave, e.g. 60 -> C4.
func PitchName(pitch int) string {
	if pitch < 0 || pitch > 127 {
		return fmt.Sprintf("?%d", pitch)
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], (pitch/12)-1)
}
