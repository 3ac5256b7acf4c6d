package core

import "github.com/agentmem-labs/agentmem-go/pkg/storage"

// toStorageMemory converts a core memory to its storage form.
func toStorageMemory(m *Memory) *storage.Memory {
	if m == nil {
		return nil
	}
	return &storage.Memory{
		ID:             m.ID,
		Content:        m.Content,
		MemoryType:     string(m.MemoryType),
		Importance:     int(m.Importance),
		Embedding:      m.Embedding,
		Metadata:       m.Metadata,
		CreatedAt:      m.CreatedAt,
		LastAccessedAt: m.LastAccessedAt,
		AccessCount:    m.AccessCount,
	}
}

// fromStorageMemory converts a storage memory back to its core form.
func fromStorageMemory(m *storage.Memory) *Memory {
	if m == nil {
		return nil
	}
	return &Memory{
		ID:             m.ID,
		Content:        m.Content,
		MemoryType:     MemoryType(m.MemoryType),
		Importance:     Importance(m.Importance),
		Embedding:      m.Embedding,
		Metadata:       m.Metadata,
		CreatedAt:      m.CreatedAt,
		LastAccessedAt: m.LastAccessedAt,
		AccessCount:    m.AccessCount,
	}
}
