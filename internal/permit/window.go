// Package permit holds the two expiring trust signals that gate asset
// transfers: physical proximity (a recent tag tap) and an owner-confirmed
// code. Both are backed by in-memory window stores local to this process;
// authorization does not survive a restart or move across devices.
package permit

import (
	"sync"
	"time"
)

// DefaultWindow is the validity window shared by both verifiers.
const DefaultWindow = time.Hour

// WindowStore maps a key to its last verification time and answers validity
// against a fixed window. Record/Valid/Clear are atomic with respect to each
// other. Entries older than the window are treated as absent.
type WindowStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	window  time.Duration
	now     func() time.Time // overridable in tests
}

// NewWindowStore constructs an empty store with the given validity window.
func NewWindowStore(window time.Duration) *WindowStore {
	return &WindowStore{
		entries: make(map[string]time.Time),
		window:  window,
		now:     time.Now,
	}
}

// Record stores the current time under key, overwriting any prior entry.
func (s *WindowStore) Record(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = s.now()
}

// Valid reports whether key was recorded less than one window ago.
func (s *WindowStore) Valid(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.entries[key]
	if !ok {
		return false
	}
	return s.now().Sub(at) < s.window
}

// Remaining returns how long key stays valid, zero if absent or expired.
func (s *WindowStore) Remaining(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.entries[key]
	if !ok {
		return 0
	}
	left := s.window - s.now().Sub(at)
	if left < 0 {
		return 0
	}
	return left
}

// Clear removes the entry for key.
func (s *WindowStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}
