package core

import "context"

// ConversationMemory specializes AgentMemory for dialogue history.
//
// Turns are stored as episodic memories with the speaking role and turn
// number in metadata. It carries no state of its own beyond the wrapped
// engine.
type ConversationMemory struct {
	*AgentMemory
}

// NewConversationMemory wraps an AgentMemory for conversation use.
func NewConversationMemory(mem *AgentMemory) *ConversationMemory {
	return &ConversationMemory{AgentMemory: mem}
}

// AddTurn records one conversation turn.
//
// Example:
//
//	m, err := conv.AddTurn(ctx, "user", "how do I reset my password?", 3)
func (c *ConversationMemory) AddTurn(ctx context.Context, role, content string, turn int, opts ...RememberOption) (*Memory, error) {
	base := []RememberOption{
		WithMemoryType(TypeEpisodic),
		WithMetadata(map[string]interface{}{
			"role": role,
			"turn": turn,
		}),
	}
	return c.Remember(ctx, content, append(base, opts...)...)
}

// KnowledgeMemory specializes AgentMemory for a long-lived fact base.
//
// Facts are stored as semantic memories with their source and a confidence
// value in metadata.
type KnowledgeMemory struct {
	*AgentMemory
}

// NewKnowledgeMemory wraps an AgentMemory for knowledge-base use.
func NewKnowledgeMemory(mem *AgentMemory) *KnowledgeMemory {
	return &KnowledgeMemory{AgentMemory: mem}
}

// AddFact records one fact with its provenance.
//
// Example:
//
//	m, err := kb.AddFact(ctx, "Postgres is the primary datastore", "architecture doc", 0.9)
func (k *KnowledgeMemory) AddFact(ctx context.Context, content, source string, confidence float64, opts ...RememberOption) (*Memory, error) {
	base := []RememberOption{
		WithMemoryType(TypeSemantic),
		WithMetadata(map[string]interface{}{
			"source":     source,
			"confidence": confidence,
		}),
	}
	return k.Remember(ctx, content, append(base, opts...)...)
}
