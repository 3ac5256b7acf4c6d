package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmem-labs/agentmem-go/pkg/storage"
	"github.com/agentmem-labs/agentmem-go/pkg/storage/sqlite"
)

func setupSQLiteTest(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(&sqlite.Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteRoundTrip(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()

	accessed := time.Now().Add(-15 * time.Minute).UTC()
	m := &storage.Memory{
		ID:             101,
		Content:        "retry budget is three attempts",
		MemoryType:     "procedural",
		Importance:     3,
		Embedding:      []float64{0.25, -0.75, 0.5},
		Metadata:       map[string]interface{}{"source": "incident review"},
		CreatedAt:      time.Now().Add(-time.Hour).UTC(),
		LastAccessedAt: &accessed,
		AccessCount:    2,
	}
	require.NoError(t, store.Save(ctx, m))

	got, err := store.Get(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, m.Content, got.Content)
	assert.Equal(t, m.MemoryType, got.MemoryType)
	assert.Equal(t, m.Importance, got.Importance)
	assert.Equal(t, m.Embedding, got.Embedding)
	assert.Equal(t, "incident review", got.Metadata["source"])
	assert.Equal(t, m.AccessCount, got.AccessCount)
	assert.WithinDuration(t, m.CreatedAt, got.CreatedAt, time.Second)
	require.NotNil(t, got.LastAccessedAt)
	assert.WithinDuration(t, accessed, *got.LastAccessedAt, time.Second)
}

func TestSQLiteNullColumns(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()

	m := &storage.Memory{
		ID:         102,
		Content:    "no embedding, no metadata",
		MemoryType: "episodic",
		Importance: 2,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, m))

	got, err := store.Get(ctx, 102)
	require.NoError(t, err)
	assert.Nil(t, got.Embedding)
	assert.Nil(t, got.Metadata)
	assert.Nil(t, got.LastAccessedAt)
}

func TestSQLiteGetNotFound(t *testing.T) {
	store := setupSQLiteTest(t)

	_, err := store.Get(context.Background(), 31337)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLiteSaveUpserts(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()

	m := &storage.Memory{ID: 103, Content: "v1", MemoryType: "episodic", Importance: 2, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, m))

	m.Content = "v2"
	m.AccessCount = 5
	require.NoError(t, store.Save(ctx, m))

	got, err := store.Get(ctx, 103)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
	assert.Equal(t, 5, got.AccessCount)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteDelete(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()

	m := &storage.Memory{ID: 104, Content: "gone soon", MemoryType: "episodic", Importance: 2, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, m))

	deleted, err := store.Delete(ctx, 104)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, 104)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSQLiteListAllAndDeleteAll(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()

	for i := int64(1); i <= 4; i++ {
		require.NoError(t, store.Save(ctx, &storage.Memory{
			ID: i, Content: "entry", MemoryType: "episodic", Importance: 2, CreatedAt: time.Now().UTC(),
		}))
	}

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, store.DeleteAll(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLiteCustomTableName(t *testing.T) {
	store, err := sqlite.NewStore(&sqlite.Config{
		DBPath:    filepath.Join(t.TempDir(), "custom.db"),
		TableName: "agent_memories",
	})
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &storage.Memory{
		ID: 1, Content: "custom table works", MemoryType: "episodic", Importance: 2, CreatedAt: time.Now().UTC(),
	}))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "custom table works", got.Content)
}
