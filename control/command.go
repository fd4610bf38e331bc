// Package control implements the text protocol a control surface uses to
// select the active scale.
//
//	stop                     return to bypass and forget held notes
//	set <root> <json array>  e.g. "set 12 [0,2,4,5,7,9,11]"
//
// Every command is acknowledged with an empty response.
package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"in-tune/scale"
)

var (
	ErrRoot  = errors.New("invalid root")
	ErrScale = errors.New("invalid scale")
)

// Command is one parsed control message: Stop, Set or Ignored.
type Command interface {
	command()
}

// Stop resets to bypass.
type Stop struct{}

// Set replaces the scale. A field that failed to parse is left in its bypass
// form (HasKey false, or Intervals empty).
type Set struct {
	Key       uint8
	HasKey    bool
	Intervals []uint8
}

// Ignored is any message the protocol does not know.
type Ignored struct {
	Input string
}

func (Stop) command()    {}
func (Set) command()     {}
func (Ignored) command() {}

// Config builds the scale config a Set installs.
func (s Set) Config() *scale.Config {
	return scale.New(s.Key, s.HasKey, s.Intervals)
}

// Parse decodes one line. The returned Command is always usable; err lists
// the fields of a set command that were rejected.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Ignored{Input: line}, nil
	}

	switch fields[0] {
	case "stop":
		return Stop{}, nil
	case "set":
		return parseSet(fields[1:])
	}
	return Ignored{Input: line}, nil
}

func parseSet(args []string) (Command, error) {
	var set Set
	var errs []error

	if len(args) == 0 {
		errs = append(errs, fmt.Errorf("%w: missing", ErrRoot))
	} else if v, err := strconv.ParseUint(args[0], 10, 8); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q", ErrRoot, args[0]))
	} else {
		set.Key, set.HasKey = uint8(v), true
	}

	if len(args) < 2 {
		errs = append(errs, fmt.Errorf("%w: missing", ErrScale))
	} else if iv, err := parseIntervals(strings.Join(args[1:], " ")); err != nil {
		errs = append(errs, err)
	} else {
		set.Intervals = iv
	}

	return set, errors.Join(errs...)
}

func parseIntervals(s string) ([]uint8, error) {
	var raw []int
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScale, err)
	}
	out := make([]uint8, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: offset %d out of byte range", ErrScale, v)
		}
		out[i] = uint8(v)
	}
	return out, nil
}

// Format renders cfg as the command that would install it.
func Format(cfg *scale.Config) string {
	key, ok := cfg.Key()
	if cfg.Bypass() || !ok {
		return "stop"
	}
	parts := make([]string, cfg.Degrees())
	for i := range parts {
		parts[i] = strconv.Itoa(int(cfg.Interval(i)))
	}
	return fmt.Sprintf("set %d [%s]", key, strings.Join(parts, ","))
}
