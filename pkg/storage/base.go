// Package storage provides interfaces and types for memory persistence backends.
//
// It defines the Store interface that all backends must satisfy, along with the
// persisted memory record type. Stores are plain key-value persistence: ranking
// and search live in the core engine, not here.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that a requested memory does not exist in the store.
var ErrNotFound = errors.New("memory not found")

// Memory is the persisted form of a memory record.
//
// This type is defined in the storage package to avoid circular dependencies
// with the core package. It mirrors the core.Memory structure.
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64

	// Content is the text content of the memory.
	Content string

	// MemoryType is the memory classification (episodic, semantic, procedural, working).
	MemoryType string

	// Importance is the importance level (1=low .. 4=critical).
	Importance int

	// Embedding is the optional vector embedding used for similarity scoring.
	Embedding []float64

	// Metadata contains caller-owned structured information.
	Metadata map[string]interface{}

	// CreatedAt is when the memory was created. Immutable after creation.
	CreatedAt time.Time

	// LastAccessedAt is when the memory was last returned by a recall
	// (nil if never accessed).
	LastAccessedAt *time.Time

	// AccessCount is the number of times the memory was returned by a recall.
	AccessCount int
}

// Clone returns a deep copy of the memory.
//
// Stores hand out clones so callers cannot mutate persisted state in place.
func (m *Memory) Clone() *Memory {
	if m == nil {
		return nil
	}
	c := *m
	if m.Embedding != nil {
		c.Embedding = make([]float64, len(m.Embedding))
		copy(c.Embedding, m.Embedding)
	}
	if m.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	if m.LastAccessedAt != nil {
		t := *m.LastAccessedAt
		c.LastAccessedAt = &t
	}
	return &c
}

// Store defines the interface for memory persistence backends.
//
// All backends (in-memory, JSON file, SQLite, PostgreSQL, MySQL) must implement
// this interface. Implementations are safe for concurrent use; multi-step
// read-modify-write sequences (recall access tracking, pruning) are serialized
// by the owning core client.
type Store interface {
	// Save inserts or overwrites a memory keyed by its ID.
	// Durable backends flush to disk before returning.
	Save(ctx context.Context, memory *Memory) error

	// Get returns the memory with the given ID.
	// Returns an error wrapping ErrNotFound when the ID is absent.
	Get(ctx context.Context, id int64) (*Memory, error)

	// Delete removes the memory if present and reports whether a removal
	// occurred. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id int64) (bool, error)

	// ListAll returns every stored memory. Order is unspecified; callers
	// must not depend on it.
	ListAll(ctx context.Context) ([]*Memory, error)

	// Count returns the number of stored memories.
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every stored memory.
	DeleteAll(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}
