package keystore

import (
	"context"
	"sync"

	"github.com/omarluq/cc-gate/internal/authz"
)

// MemoryStore is an in-memory key store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]authz.KeyRecord // keyed by ValueHash
}

var _ authz.KeyStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]authz.KeyRecord)}
}

// Put stores a record, keyed by its ValueHash.
func (s *MemoryStore) Put(record authz.KeyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ValueHash] = record
}

// Remove deletes the record with the given hash, if present.
func (s *MemoryStore) Remove(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, hash)
}

// QueryByHash returns the record matching the hash, or authz.ErrKeyNotFound.
func (s *MemoryStore) QueryByHash(_ context.Context, hash string) (authz.KeyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[hash]
	if !ok {
		return authz.KeyRecord{}, authz.ErrKeyNotFound
	}
	return record, nil
}
