package usecase

import (
	"sync"
	"time"

	"FRELookup/internal/cache"
	"FRELookup/internal/domain"
)

// Sessions isolates per-session item memoization. Datasets are shared; the
// discovered item tables are not.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	now     func() time.Time
}

type sessionEntry struct {
	items    *cache.Memo[string, domain.ItemCodeMap]
	lastSeen time.Time
}

func NewSessions() *Sessions {
	return &Sessions{entries: map[string]*sessionEntry{}, now: time.Now}
}

// Items returns the item memo of session id, creating it on first use.
func (s *Sessions) Items(id string) *cache.Memo[string, domain.ItemCodeMap] {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		entry = &sessionEntry{items: cache.NewMemo[string, domain.ItemCodeMap]()}
		s.entries[id] = entry
	}
	entry.lastSeen = s.now()
	return entry.items
}

// Forget drops a single session.
func (s *Sessions) Forget(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Sweep drops sessions idle for longer than maxIdle and reports how many.
func (s *Sessions) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, entry := range s.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
