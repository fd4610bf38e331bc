package engine

import (
	"sync"

	"in-tune/scale"
)

// Store holds the current scale config. Readers take a pointer snapshot;
// configs are immutable, so a snapshot never changes under the reader.
type Store struct {
	mu  sync.RWMutex
	cur *scale.Config
}

// NewStore creates a store in bypass state
func NewStore() *Store {
	return &Store{cur: scale.Bypass()}
}

// Snapshot returns the config in effect. The lock covers only the pointer copy.
func (s *Store) Snapshot() *scale.Config {
	s.mu.RLock()
	c := s.cur
	s.mu.RUnlock()
	return c
}

// Replace installs c wholesale. Build c before calling; nothing is allocated
// while the lock is held.
func (s *Store) Replace(c *scale.Config) {
	if c == nil {
		c = scale.Bypass()
	}
	s.mu.Lock()
	s.cur = c
	s.mu.Unlock()
}

// Reset returns the store to bypass.
func (s *Store) Reset() {
	s.Replace(scale.Bypass())
}
