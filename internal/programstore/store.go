// Package programstore holds the in-memory program metadata handed over by
// the import pipeline. The orchestration core reads it through the
// control.ProgramStore seam and never mutates a stored program.
package programstore

import (
	"fmt"
	"sync"

	"deckcontrol/internal/control"
)

// InMemory is a concurrency-safe in-memory implementation of
// control.ProgramStore.
type InMemory struct {
	mu       sync.RWMutex
	programs map[control.ProgramID]*control.Program
	order    []control.ProgramID
}

// NewInMemory returns an empty store.
func NewInMemory() *InMemory {
	return &InMemory{programs: make(map[control.ProgramID]*control.Program)}
}

// Get implements control.ProgramStore.
func (s *InMemory) Get(id control.ProgramID) (*control.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.programs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", control.ErrProgramNotFound, id)
	}
	return p, nil
}

// Put implements control.ProgramStore. Re-putting an existing ID replaces
// the metadata in place and keeps its position in the listing order.
func (s *InMemory) Put(p *control.Program) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: program with empty id", control.ErrInvalidArgument)
	}
	if !p.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", control.ErrInvalidArgument, p.Mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.programs[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.programs[p.ID] = p
	return nil
}

// List implements control.ProgramStore.
func (s *InMemory) List() []*control.Program {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*control.Program, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.programs[id])
	}
	return out
}
