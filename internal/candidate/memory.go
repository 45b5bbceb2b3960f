package candidate

import (
	"context"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store.
// Thread-safe via RWMutex; used in tests and single-node development.
type InMemoryStore struct {
	mu         sync.RWMutex
	candidates []Candidate
}

// NewInMemoryStore creates a new empty in-memory candidate store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Add inserts a candidate into the store.
func (s *InMemoryStore) Add(c Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append(s.candidates, c)
}

// Replace swaps the entire candidate set.
func (s *InMemoryStore) Replace(candidates []Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = make([]Candidate, len(candidates))
	copy(s.candidates, candidates)
}

// EligibleCandidates returns a copy of the current candidate set.
func (s *InMemoryStore) EligibleCandidates(_ context.Context) ([]Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Candidate, len(s.candidates))
	copy(result, s.candidates)
	return result, nil
}
