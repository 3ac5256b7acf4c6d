package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmem-labs/agentmem-go/pkg/core"
)

func TestConversationMemoryAddTurn(t *testing.T) {
	conv := core.NewConversationMemory(newTestMemory(t))
	ctx := context.Background()

	m, err := conv.AddTurn(ctx, "user", "how do I reset my password?", 3)
	require.NoError(t, err)

	assert.Equal(t, core.TypeEpisodic, m.MemoryType)
	assert.Equal(t, "user", m.Metadata["role"])
	assert.Equal(t, 3, m.Metadata["turn"])
}

func TestConversationMemoryAddTurnOverrides(t *testing.T) {
	conv := core.NewConversationMemory(newTestMemory(t))
	ctx := context.Background()

	m, err := conv.AddTurn(ctx, "assistant", "use the reset link in settings", 4,
		core.WithImportance(core.ImportanceHigh))
	require.NoError(t, err)

	assert.Equal(t, core.ImportanceHigh, m.Importance)
	assert.Equal(t, "assistant", m.Metadata["role"])
}

func TestConversationMemoryRecallAcrossTurns(t *testing.T) {
	conv := core.NewConversationMemory(newTestMemory(t))
	ctx := context.Background()

	turns := []string{
		"the deploy failed with a timeout",
		"try increasing the health check grace period",
		"that fixed it, deploy is green now",
	}
	for i, content := range turns {
		_, err := conv.AddTurn(ctx, "user", content, i+1)
		require.NoError(t, err)
	}

	results, err := conv.Recall(ctx, "deploy timeout")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, turns[0], results[0].Memory.Content)
}

func TestKnowledgeMemoryAddFact(t *testing.T) {
	kb := core.NewKnowledgeMemory(newTestMemory(t))
	ctx := context.Background()

	m, err := kb.AddFact(ctx, "Postgres is the primary datastore", "architecture doc", 0.9)
	require.NoError(t, err)

	assert.Equal(t, core.TypeSemantic, m.MemoryType)
	assert.Equal(t, "architecture doc", m.Metadata["source"])
	assert.Equal(t, 0.9, m.Metadata["confidence"])
}

func TestKnowledgeMemoryTypeIsolation(t *testing.T) {
	mem := newTestMemory(t)
	kb := core.NewKnowledgeMemory(mem)
	conv := core.NewConversationMemory(mem)
	ctx := context.Background()

	_, err := kb.AddFact(ctx, "billing runs on stripe", "runbook", 0.8)
	require.NoError(t, err)
	_, err = conv.AddTurn(ctx, "user", "billing runs on stripe", 1)
	require.NoError(t, err)

	results, err := mem.Recall(ctx, "billing stripe",
		core.WithTypeFilter(core.TypeSemantic))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.TypeSemantic, results[0].Memory.MemoryType)
}
