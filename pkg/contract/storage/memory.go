package storage

import (
	"context"
	"sync"

	"veridian-hq/covenant/pkg/contract"
)

// MemoryStore keeps contracts in a map. Intended for tests.
type MemoryStore struct {
	contracts map[string]contract.Contract
	mu        sync.RWMutex
}

// NewMemoryStore creates an empty in-memory contract store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contracts: make(map[string]contract.Contract)}
}

// Load returns a copy of the stored contract, or an empty one.
func (s *MemoryStore) Load(ctx context.Context, modulePath string) (contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := contract.Contract{}
	for symbol, rec := range s.contracts[modulePath] {
		out[symbol] = rec
	}
	return out, nil
}

// Save replaces the stored contract with a copy of c.
func (s *MemoryStore) Save(ctx context.Context, modulePath string, c contract.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := contract.Contract{}
	for symbol, rec := range c {
		stored[symbol] = rec
	}
	s.contracts[modulePath] = stored
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
