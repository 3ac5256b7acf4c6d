// Package jsonfile provides a file-backed JSON implementation of the
// storage.Store interface.
//
// The whole store is loaded into memory on construction and the full file is
// rewritten on every mutating operation. This gives durable-on-write semantics
// for small datasets; it is not designed for high write throughput.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/agentmem-labs/agentmem-go/pkg/storage"
)

// schemaVersion is the current on-disk document version.
const schemaVersion = 1

// document is the top-level structure of the backing file: a version tag and a
// mapping from memory ID (decimal string) to serialized record.
type document struct {
	Version  int               `json:"version"`
	Memories map[string]record `json:"memories"`
}

// record is the serialized form of a memory. Timestamps are RFC 3339.
type record struct {
	ID             int64                  `json:"id"`
	Content        string                 `json:"content"`
	MemoryType     string                 `json:"memory_type"`
	Importance     int                    `json:"importance"`
	Embedding      []float64              `json:"embedding,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAccessedAt *time.Time             `json:"last_accessed_at,omitempty"`
	AccessCount    int                    `json:"access_count"`
}

// Store implements storage.Store backed by a single JSON file.
type Store struct {
	mu       sync.RWMutex
	path     string
	memories map[int64]*storage.Memory
}

// NewStore creates a file-backed store at the given path.
//
// If the file exists it is parsed in full; a missing file starts an empty
// store. An unparseable file is an error, never silently treated as empty —
// the caller decides whether to fall back or abort.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("jsonfile: create directory: %w", err)
		}
	}

	s := &Store{
		path:     path,
		memories: make(map[int64]*storage.Memory),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads and parses the backing file into memory.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("jsonfile: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("jsonfile: parse %s: %w", s.path, err)
	}
	if doc.Version > schemaVersion {
		return fmt.Errorf("jsonfile: %s has unsupported schema version %d", s.path, doc.Version)
	}

	for key, rec := range doc.Memories {
		m := recordToMemory(rec)
		if m.ID == 0 {
			// Pre-versioned files may carry the ID only in the map key.
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return fmt.Errorf("jsonfile: parse %s: invalid memory id %q", s.path, key)
			}
			m.ID = id
		}
		s.memories[m.ID] = m
	}
	return nil
}

// flush rewrites the entire backing file.
//
// The write goes through a temp file and rename so a crash mid-write never
// leaves a truncated store behind.
func (s *Store) flush() error {
	doc := document{
		Version:  schemaVersion,
		Memories: make(map[string]record, len(s.memories)),
	}
	for id, m := range s.memories {
		doc.Memories[strconv.FormatInt(id, 10)] = memoryToRecord(m)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("jsonfile: rename %s: %w", tmp, err)
	}
	return nil
}

// Save inserts or overwrites a memory and rewrites the file.
func (s *Store) Save(ctx context.Context, m *storage.Memory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[m.ID] = m.Clone()
	return s.flush()
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

// Delete removes the memory if present, rewrites the file, and reports
// whether a removal occurred.
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
	if err := s.flush(); err != nil {
		return false, err
	}
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

// DeleteAll removes every stored memory and rewrites the file.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = make(map[int64]*storage.Memory)
	return s.flush()
}

// Close releases resources. The file handle is not kept open between writes.
func (s *Store) Close() error {
	return nil
}

// memoryToRecord converts a storage memory to its serialized form.
func memoryToRecord(m *storage.Memory) record {
	return record{
		ID:             m.ID,
		Content:        m.Content,
		MemoryType:     m.MemoryType,
		Importance:     m.Importance,
		Embedding:      m.Embedding,
		Metadata:       m.Metadata,
		CreatedAt:      m.CreatedAt,
		LastAccessedAt: m.LastAccessedAt,
		AccessCount:    m.AccessCount,
	}
}

// recordToMemory converts a serialized record back to a storage memory,
// defaulting fields older files may lack.
func recordToMemory(rec record) *storage.Memory {
	m := &storage.Memory{
		ID:             rec.ID,
		Content:        rec.Content,
		MemoryType:     rec.MemoryType,
		Importance:     rec.Importance,
		Embedding:      rec.Embedding,
		Metadata:       rec.Metadata,
		CreatedAt:      rec.CreatedAt,
		LastAccessedAt: rec.LastAccessedAt,
		AccessCount:    rec.AccessCount,
	}
	if m.MemoryType == "" {
		m.MemoryType = "episodic"
	}
	if m.Importance == 0 {
		m.Importance = 2 // medium
	}
	return m
}
