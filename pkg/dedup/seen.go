package dedup

import (
	"sync"

	"github.com/agentstation/skusweep/pkg/catalog"
)

// Seen is the append-only set of identifiers already processed in a run.
type Seen struct {
	mu  sync.Mutex
	ids map[catalog.Identifier]struct{}
}

// NewSeen creates an empty set.
func NewSeen() *Seen {
	return &Seen{ids: make(map[catalog.Identifier]struct{})}
}

// Claim adds id and reports whether it was new. The check and insert are a
// single step, so exactly one caller wins a given identifier.
func (s *Seen) Claim(id catalog.Identifier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id was claimed.
func (s *Seen) Has(id catalog.Identifier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of claimed identifiers.
func (s *Seen) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
