package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/biokuam/portal/internal/domain"
)

// MemStore holds collections in memory. Used by tests and as a scratch
// backend; survives nothing.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string][]byte)}
}

func (s *MemStore) Load(_ context.Context, name string, out any) error {
	s.mu.RLock()
	data, ok := s.docs[name]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, name, err)
	}
	return nil
}

func (s *MemStore) Save(_ context.Context, name string, records any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorage, name, err)
	}
	s.mu.Lock()
	s.docs[name] = data
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Ping(context.Context) error { return nil }
