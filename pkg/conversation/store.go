package conversation

import "sync"

// Store holds the ordered turns of a single session under a retention cap.
// Once the cap is exceeded the oldest turns are evicted first (FIFO).
// All operations are safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	turns []Turn
	cap   int
}

const DefaultRetentionCap = 20

// NewStore creates a store with the given retention cap.
// A cap <= 0 falls back to DefaultRetentionCap.
func NewStore(retentionCap int) *Store {
	if retentionCap <= 0 {
		retentionCap = DefaultRetentionCap
	}
	return &Store{
		turns: make([]Turn, 0, retentionCap),
		cap:   retentionCap,
	}
}

// Append adds a turn to the end, evicting the oldest turns when the cap is
// exceeded. Append always succeeds.
func (s *Store) Append(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, turn)
	if overflow := len(s.turns) - s.cap; overflow > 0 {
		s.turns = append(s.turns[:0], s.turns[overflow:]...)
	}
}

// Snapshot returns the most recent limit turns in original order without
// mutating the store. A limit <= 0 returns all retained turns.
func (s *Store) Snapshot(limit int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if limit > 0 && len(s.turns) > limit {
		start = len(s.turns) - limit
	}
	out := make([]Turn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out
}

// Clear empties the store. Narration cancellation on clear is the
// controller's responsibility, not the store's.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = s.turns[:0]
}

// Len returns the number of retained turns.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// LastUserText returns the text of the most recent user turn, if any.
func (s *Store) LastUserText() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.turns) - 1; i >= 0; i-- {
		if s.turns[i].Role == RoleUser {
			return s.turns[i].Text, true
		}
	}
	return "", false
}
