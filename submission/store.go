package submission

import "sync"

// Store bridges the drafting phase and the moderation-decision phase.
// It owns Record instances: the moderator side reads and must delete on a
// terminal decision, never retaining a copy past one decision's handling.
type Store interface {
	Put(id string, rec Record)
	Get(id string) (Record, bool)
	// Delete removes the record; deleting an absent id is a no-op.
	Delete(id string)
	// Len reports the number of records still awaiting a decision.
	Len() int
}

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore constructs the in-memory Store used for the lifetime of the
// process. Unresolved records persist until a decision arrives; there is no
// eviction.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]Record)}
}

func (s *memoryStore) Put(id string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = rec
}

func (s *memoryStore) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

func (s *memoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
