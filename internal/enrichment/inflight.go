package enrichment

import (
	"sync"

	"github.com/google/uuid"
)

// InFlight is a set of entry ids currently being enriched.
type InFlight struct {
	mu  sync.Mutex
	ids map[uuid.UUID]struct{}
}

// NewInFlight creates an empty set.
func NewInFlight() *InFlight {
	return &InFlight{ids: make(map[uuid.UUID]struct{})}
}

// processInFlight is shared by every sweeper in the process unless one is
// given its own set.
var processInFlight = NewInFlight()

// TryAcquire adds id and reports whether it was absent.
func (s *InFlight) TryAcquire(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.ids[id]; busy {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Release removes id.
func (s *InFlight) Release(id uuid.UUID) {
	s.mu.Lock()
	delete(s.ids, id)
	s.mu.Unlock()
}

// Contains reports whether id is in flight.
func (s *InFlight) Contains(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len is the number of ids in flight.
func (s *InFlight) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
