package core_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmem-labs/agentmem-go/pkg/core"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *core.Config
		wantErr bool
	}{
		{
			name: "valid memory store",
			config: &core.Config{
				Store: core.StoreConfig{Provider: "memory"},
			},
			wantErr: false,
		},
		{
			name:    "missing store provider",
			config:  &core.Config{},
			wantErr: true,
		},
		{
			name: "embedder without provider",
			config: &core.Config{
				Store:    core.StoreConfig{Provider: "memory"},
				Embedder: &core.EmbedderConfig{APIKey: "sk-test"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewFromConfigMemory(t *testing.T) {
	mem, err := core.NewFromConfig(&core.Config{
		Store: core.StoreConfig{Provider: "memory"},
	})
	require.NoError(t, err)
	defer mem.Close()

	_, err = mem.Remember(context.Background(), "configured via config")
	assert.NoError(t, err)
}

func TestNewFromConfigJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memories.json")

	mem, err := core.NewFromConfig(&core.Config{
		Store: core.StoreConfig{
			Provider: "jsonfile",
			Config:   map[string]interface{}{"path": path},
		},
	})
	require.NoError(t, err)
	defer mem.Close()

	_, err = mem.Remember(context.Background(), "persisted to disk")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestNewFromConfigUnknownProvider(t *testing.T) {
	_, err := core.NewFromConfig(&core.Config{
		Store: core.StoreConfig{Provider: "etcd"},
	})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestNewFromConfigNegativeMaxDisablesPruning(t *testing.T) {
	mem, err := core.NewFromConfig(&core.Config{
		Store:       core.StoreConfig{Provider: "memory"},
		MaxMemories: -1,
	})
	require.NoError(t, err)
	defer mem.Close()

	ctx := context.Background()
	for i := 0; i < core.DefaultMaxMemories/100; i++ {
		_, err := mem.Remember(ctx, "no cap applies")
		require.NoError(t, err)
	}

	count, err := mem.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultMaxMemories/100, count)
}

func TestLoadConfigFromJSON(t *testing.T) {
	source := &core.Config{
		Store: core.StoreConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path":    "/tmp/agentmem.db",
				"table_name": "agent_memories",
			},
		},
		Embedder: &core.EmbedderConfig{
			Provider: "openai",
			APIKey:   "sk-test",
			Model:    "text-embedding-3-small",
		},
		MaxMemories: 250,
		DecayRate:   0.05,
	}

	data, err := json.Marshal(source)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := core.LoadConfigFromJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", loaded.Store.Provider)
	assert.Equal(t, "/tmp/agentmem.db", loaded.Store.Config["db_path"])
	require.NotNil(t, loaded.Embedder)
	assert.Equal(t, "openai", loaded.Embedder.Provider)
	assert.Equal(t, 250, loaded.MaxMemories)
	assert.InDelta(t, 0.05, loaded.DecayRate, 1e-9)
}

func TestLoadConfigFromJSONMissingFile(t *testing.T) {
	_, err := core.LoadConfigFromJSON(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadConfigFromJSONInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := core.LoadConfigFromJSON(path)
	assert.Error(t, err)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AGENTMEM_STORE", "jsonfile")
	t.Setenv("AGENTMEM_JSONFILE_PATH", "/tmp/env-memories.json")
	t.Setenv("AGENTMEM_MAX_MEMORIES", "42")
	t.Setenv("AGENTMEM_DECAY_RATE", "0.2")
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("EMBEDDING_API_KEY", "sk-env")
	t.Setenv("EMBEDDING_MODEL", "text-embedding-3-large")

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "jsonfile", config.Store.Provider)
	assert.Equal(t, "/tmp/env-memories.json", config.Store.Config["path"])
	assert.Equal(t, 42, config.MaxMemories)
	assert.InDelta(t, 0.2, config.DecayRate, 1e-9)
	require.NotNil(t, config.Embedder)
	assert.Equal(t, "openai", config.Embedder.Provider)
	assert.Equal(t, "sk-env", config.Embedder.APIKey)
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("AGENTMEM_STORE", "")
	t.Setenv("AGENTMEM_MAX_MEMORIES", "")
	t.Setenv("AGENTMEM_DECAY_RATE", "")
	t.Setenv("EMBEDDING_PROVIDER", "")

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "memory", config.Store.Provider)
	assert.Zero(t, config.MaxMemories)
	assert.Nil(t, config.Embedder)
}
