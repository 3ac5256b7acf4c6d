package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmem-labs/agentmem-go/pkg/storage"
	memorystore "github.com/agentmem-labs/agentmem-go/pkg/storage/memory"
)

func TestSaveAndGet(t *testing.T) {
	store := memorystore.NewStore()
	defer store.Close()
	ctx := context.Background()

	accessed := time.Now().Add(-time.Hour)
	m := &storage.Memory{
		ID:             1001,
		Content:        "the ci cache lives on the build host",
		MemoryType:     "procedural",
		Importance:     3,
		Embedding:      []float64{0.1, 0.2, 0.3},
		Metadata:       map[string]interface{}{"source": "runbook"},
		CreatedAt:      time.Now().Add(-2 * time.Hour),
		LastAccessedAt: &accessed,
		AccessCount:    2,
	}
	require.NoError(t, store.Save(ctx, m))

	got, err := store.Get(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, m.Content, got.Content)
	assert.Equal(t, m.MemoryType, got.MemoryType)
	assert.Equal(t, m.Importance, got.Importance)
	assert.Equal(t, m.Embedding, got.Embedding)
	assert.Equal(t, m.Metadata, got.Metadata)
	assert.Equal(t, m.AccessCount, got.AccessCount)
	require.NotNil(t, got.LastAccessedAt)
}

func TestGetNotFound(t *testing.T) {
	store := memorystore.NewStore()
	defer store.Close()

	_, err := store.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveUpserts(t *testing.T) {
	store := memorystore.NewStore()
	defer store.Close()
	ctx := context.Background()

	m := &storage.Memory{ID: 7, Content: "first version", MemoryType: "episodic", Importance: 2, CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, m))

	m.Content = "second version"
	m.AccessCount = 1
	require.NoError(t, store.Save(ctx, m))

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "second version", got.Content)
	assert.Equal(t, 1, got.AccessCount)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetReturnsCopy(t *testing.T) {
	store := memorystore.NewStore()
	defer store.Close()
	ctx := context.Background()

	m := &storage.Memory{ID: 8, Content: "original", MemoryType: "episodic", Importance: 2, CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, m))

	got, err := store.Get(ctx, 8)
	require.NoError(t, err)
	got.Content = "mutated by caller"

	again, err := store.Get(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Content)
}

func TestDelete(t *testing.T) {
	store := memorystore.NewStore()
	defer store.Close()
	ctx := context.Background()

	m := &storage.Memory{ID: 9, Content: "to delete", MemoryType: "episodic", Importance: 2, CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, m))

	deleted, err := store.Delete(ctx, 9)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Deleting again reports false without an error.
	deleted, err = store.Delete(ctx, 9)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListAllAndDeleteAll(t *testing.T) {
	store := memorystore.NewStore()
	defer store.Close()
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, store.Save(ctx, &storage.Memory{
			ID: i, Content: "entry", MemoryType: "episodic", Importance: 2, CreatedAt: time.Now(),
		}))
	}

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	require.NoError(t, store.DeleteAll(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestContextCancellation(t *testing.T) {
	store := memorystore.NewStore()
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Save(ctx, &storage.Memory{ID: 1, Content: "x", MemoryType: "episodic", Importance: 2, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.ListAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
