// Package core provides the AgentMemory client and memory management
// functionality: typed memory records, ranked recall, and capacity pruning.
package core

import "time"

// MemoryType classifies what kind of experience or knowledge a memory holds.
type MemoryType string

const (
	// TypeEpisodic is a memory of a specific event or interaction.
	TypeEpisodic MemoryType = "episodic"

	// TypeSemantic is a general fact or piece of knowledge.
	TypeSemantic MemoryType = "semantic"

	// TypeProcedural is a memory of how to perform a task.
	TypeProcedural MemoryType = "procedural"

	// TypeWorking is short-lived scratchpad state for the current task.
	TypeWorking MemoryType = "working"
)

// Valid reports whether the memory type is one of the defined values.
func (t MemoryType) Valid() bool {
	switch t {
	case TypeEpisodic, TypeSemantic, TypeProcedural, TypeWorking:
		return true
	}
	return false
}

// Importance is the significance level assigned to a memory. It feeds directly
// into recall ranking and pruning order.
type Importance int

const (
	ImportanceLow      Importance = 1
	ImportanceMedium   Importance = 2
	ImportanceHigh     Importance = 3
	ImportanceCritical Importance = 4
)

// Valid reports whether the importance is one of the four defined levels.
func (i Importance) Valid() bool {
	return i >= ImportanceLow && i <= ImportanceCritical
}

// String returns the lowercase name of the importance level.
func (i Importance) String() string {
	switch i {
	case ImportanceLow:
		return "low"
	case ImportanceMedium:
		return "medium"
	case ImportanceHigh:
		return "high"
	case ImportanceCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Memory represents a single stored unit of agent experience or knowledge.
//
// A memory is created by AgentMemory.Remember, mutated (AccessCount,
// LastAccessedAt) each time Recall returns it, and destroyed by Forget or by
// pruning when the store exceeds its capacity.
type Memory struct {
	// ID is the unique identifier, assigned at creation.
	ID int64 `json:"id"`

	// Content is the text payload. Never empty.
	Content string `json:"content"`

	// MemoryType is the memory classification.
	MemoryType MemoryType `json:"memory_type"`

	// Importance is the significance level (low..critical).
	Importance Importance `json:"importance"`

	// Embedding is the optional vector embedding used for similarity
	// scoring. Omitted from JSON when absent.
	Embedding []float64 `json:"embedding,omitempty"`

	// Metadata contains caller-owned structured information.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is when the memory was created. Immutable once set.
	CreatedAt time.Time `json:"created_at"`

	// LastAccessedAt is when the memory was last returned by a recall
	// (nil if never accessed).
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`

	// AccessCount is the number of times the memory was returned by a
	// recall. Monotonically non-decreasing.
	AccessCount int `json:"access_count"`
}

// RetrievalResult pairs a recalled memory with its ranking scores.
//
// Results are constructed fresh on every Recall call and never persisted. The
// combined score is 0.4*relevance + 0.3*recency + 0.3*importance.
type RetrievalResult struct {
	// Memory is the recalled memory.
	Memory *Memory `json:"memory"`

	// RelevanceScore is the query-similarity score in [0,1].
	RelevanceScore float64 `json:"relevance_score"`

	// RecencyScore is the time-decay score in [0,1].
	RecencyScore float64 `json:"recency_score"`

	// ImportanceScore is the normalized importance in [0,1].
	ImportanceScore float64 `json:"importance_score"`

	// CombinedScore is the weighted combination used for ordering.
	CombinedScore float64 `json:"combined_score"`
}
