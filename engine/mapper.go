package engine

import (
	"in-tune/midi"
	"in-tune/scale"
)

// Map computes the outgoing pitch for a NoteOn under cfg. The second result
// is false when the note must be suppressed: the pressed key's degree has no
// interval, or the result leaves 0-127. Commands other than NoteOn are never
// mapped here; releases resolve through the NoteTable.
func Map(cfg *scale.Config, cmd midi.Command, pitch uint8) (uint8, bool) {
	if cmd != midi.NoteOn {
		return 0, false
	}
	if cfg.Bypass() {
		return pitch, true
	}

	degree := int(pitch % 12)
	if degree >= cfg.Degrees() {
		return 0, false
	}

	octave := int(pitch / 12)
	out := octave*12 + (cfg.Root() - 12) + int(cfg.Interval(degree))
	if out < 0 || out > 127 {
		return 0, false
	}
	return uint8(out), true
}
