package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process ledger for tests and single-instance dev runs.
// It honors the same contract as the durable backends but offers no
// durability and cannot be shared across processes.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Exists(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[eventID]
	return ok, nil
}

func (s *MemoryStore) TryReserve(_ context.Context, eventID, eventType string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[eventID]; ok {
		return false, nil
	}
	s.records[eventID] = Record{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now().UTC(),
	}
	return true, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Len reports how many records exist; test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Get returns the record for eventID, if any; test helper.
func (s *MemoryStore) Get(eventID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[eventID]
	return rec, ok
}
