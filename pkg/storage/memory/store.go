// Package memory provides an in-process map implementation of the storage.Store
// interface.
//
// The store is ephemeral: all memories are lost when the process exits. It is
// the default backend for tests and short-lived agent sessions.
package memory

import (
	"context"
	"sync"

	"github.com/agentmem-labs/agentmem-go/pkg/storage"
)

// Store implements storage.Store using an in-process map keyed by memory ID.
type Store struct {
	mu       sync.RWMutex
	memories map[int64]*storage.Memory
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		memories: make(map[int64]*storage.Memory),
	}
}

// Save inserts or overwrites a memory keyed by its ID.
func (s *Store) Save(ctx context.Context, m *storage.Memory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[m.ID] = m.Clone()
	return nil
}

// Get returns the memory with the given ID, or storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*storage.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memories[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return m.Clone(), nil
}

// Delete removes the memory if present and reports whether a removal occurred.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memories[id]; !ok {
		return false, nil
	}
	delete(s.memories, id)
	return true, nil
}

// ListAll returns every stored memory in unspecified order.
func (s *Store) ListAll(ctx context.Context) ([]*storage.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	memories := make([]*storage.Memory, 0, len(s.memories))
	for _, m := range s.memories {
		memories = append(memories, m.Clone())
	}
	return memories, nil
}

// Count returns the number of stored memories.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memories), nil
}

// DeleteAll removes every stored memory.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = make(map[int64]*storage.Memory)
	return nil
}

// Close releases resources. The in-memory store holds none.
func (s *Store) Close() error {
	return nil
}
