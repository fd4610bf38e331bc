package scale

import "fmt"

// Config is one generation of the active scale: a root key and the interval
// offsets for each degree. A Config is never modified after New returns.
type Config struct {
	key       uint8
	hasKey    bool
	intervals []uint8
}

var bypass = &Config{}

// Bypass returns the shared config under which mapping is the identity.
func Bypass() *Config {
	return bypass
}

// New builds a config from a root key and interval table. The intervals are
// copied. A missing key or an empty table yields a bypass config that still
// remembers whichever half was given.
func New(key uint8, hasKey bool, intervals []uint8) *Config {
	c := &Config{key: key, hasKey: hasKey}
	if len(intervals) > 0 {
		c.intervals = append([]uint8(nil), intervals...)
	}
	return c
}

// Bypass reports whether the config leaves pitches untouched.
func (c *Config) Bypass() bool {
	return c == nil || !c.hasKey || len(c.intervals) == 0
}

// Key returns the root key byte as it was set.
func (c *Config) Key() (uint8, bool) {
	if c == nil {
		return 0, false
	}
	return c.key, c.hasKey
}

// Root returns the root pitch-class (0-11).
func (c *Config) Root() int {
	if c == nil {
		return 0
	}
	return int(c.key % 12)
}

// Degrees is the number of scale positions the config can address.
func (c *Config) Degrees() int {
	if c == nil {
		return 0
	}
	return len(c.intervals)
}

// Interval returns the offset for a degree. Callers check Degrees first.
func (c *Config) Interval(degree int) uint8 {
	return c.intervals[degree]
}

// Intervals returns a copy of the interval table.
func (c *Config) Intervals() []uint8 {
	if c == nil || len(c.intervals) == 0 {
		return nil
	}
	return append([]uint8(nil), c.intervals...)
}

// Contains reports whether pitch-class pc is produced by some degree.
func (c *Config) Contains(pc int) bool {
	if c.Bypass() {
		return true
	}
	for _, off := range c.intervals {
		if (c.Root()+int(off))%12 == pc%12 {
			return true
		}
	}
	return false
}

// Equal compares key and intervals.
func (c *Config) Equal(o *Config) bool {
	if c.Bypass() || o.Bypass() {
		return c.Bypass() == o.Bypass()
	}
	if c.key != o.key || len(c.intervals) != len(o.intervals) {
		return false
	}
	for i := range c.intervals {
		if c.intervals[i] != o.intervals[i] {
			return false
		}
	}
	return true
}

func (c *Config) String() string {
	if c.Bypass() {
		return "bypass"
	}
	return fmt.Sprintf("%s %v", KeyName(c.Root()), c.intervals)
}
