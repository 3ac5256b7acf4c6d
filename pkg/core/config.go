package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/agentmem-labs/agentmem-go/pkg/embedder"
	openaiEmbedder "github.com/agentmem-labs/agentmem-go/pkg/embedder/openai"
	"github.com/agentmem-labs/agentmem-go/pkg/ranking"
	"github.com/agentmem-labs/agentmem-go/pkg/storage"
	jsonfileStore "github.com/agentmem-labs/agentmem-go/pkg/storage/jsonfile"
	memoryStore "github.com/agentmem-labs/agentmem-go/pkg/storage/memory"
	mysqlStore "github.com/agentmem-labs/agentmem-go/pkg/storage/mysql"
	postgresStore "github.com/agentmem-labs/agentmem-go/pkg/storage/postgres"
	sqliteStore "github.com/agentmem-labs/agentmem-go/pkg/storage/sqlite"
)

// Config contains the complete configuration for an AgentMemory built via
// NewFromConfig.
//
// Constructor injection (New with an explicit store and embedder) is the
// primary path; Config is the convenience layer for wiring from environment
// or JSON files.
//
// Example:
//
//	config := &core.Config{
//	    Store: core.StoreConfig{
//	        Provider: "jsonfile",
//	        Config:   map[string]interface{}{"path": "./memories.json"},
//	    },
//	    MaxMemories: 500,
//	}
//	mem, err := core.NewFromConfig(config)
type Config struct {
	// Store contains the persistence backend configuration.
	Store StoreConfig `json:"store"`

	// Embedder contains the optional embedding provider configuration.
	// Nil means keyword-overlap relevance only.
	Embedder *EmbedderConfig `json:"embedder,omitempty"`

	// MaxMemories is the capacity limit that triggers pruning.
	// Zero uses DefaultMaxMemories; negative disables pruning.
	MaxMemories int `json:"max_memories,omitempty"`

	// DecayRate is the recency decay rate. Zero uses the default.
	DecayRate float64 `json:"decay_rate,omitempty"`
}

// StoreConfig contains configuration for the persistence backend.
//
// Supported providers: memory, jsonfile, sqlite, postgres, mysql.
type StoreConfig struct {
	// Provider is the backend name.
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For jsonfile: path
	// For sqlite: db_path, table_name
	// For postgres/mysql: host, port, user, password, db_name, table_name
	// (postgres also accepts ssl_mode)
	Config map[string]interface{} `json:"config,omitempty"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: openai (and any OpenAI-compatible endpoint via
// base_url).
type EmbedderConfig struct {
	// Provider is the embedding provider name.
	Provider string `json:"provider"`

	// APIKey is the API key for the provider.
	APIKey string `json:"api_key"`

	// Model is the embedding model name.
	Model string `json:"model,omitempty"`

	// BaseURL overrides the API endpoint (optional).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the vector dimension (optional).
	Dimensions int `json:"dimensions,omitempty"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Store.Provider == "" {
		return NewMemoryError("Validate", fmt.Errorf("%w: store provider is required", ErrInvalidConfig))
	}
	if c.Embedder != nil && c.Embedder.Provider == "" {
		return NewMemoryError("Validate", fmt.Errorf("%w: embedder provider is required when embedder is set", ErrInvalidConfig))
	}
	return nil
}

// NewFromConfig builds an AgentMemory from a Config: backend, optional
// embedder, capacity limit, and decay rate.
func NewFromConfig(cfg *Config, opts ...Option) (*AgentMemory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := initStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	base := make([]Option, 0, len(opts)+3)
	if cfg.Embedder != nil {
		provider, err := initEmbedder(cfg.Embedder)
		if err != nil {
			return nil, err
		}
		base = append(base, WithEmbedder(provider))
	}
	switch {
	case cfg.MaxMemories > 0:
		base = append(base, WithMaxMemories(cfg.MaxMemories))
	case cfg.MaxMemories < 0:
		base = append(base, WithMaxMemories(0))
	}
	if cfg.DecayRate > 0 {
		base = append(base, WithDecayRate(cfg.DecayRate))
	}

	return New(store, append(base, opts...)...)
}

// initStore initializes the persistence backend.
func initStore(cfg StoreConfig) (storage.Store, error) {
	switch cfg.Provider {
	case "memory":
		return memoryStore.NewStore(), nil
	case "jsonfile":
		path := stringValue(cfg.Config, "path", "./memories.json")
		return jsonfileStore.NewStore(path)
	case "sqlite":
		return sqliteStore.NewStore(&sqliteStore.Config{
			DBPath:    stringValue(cfg.Config, "db_path", "./agentmem.db"),
			TableName: stringValue(cfg.Config, "table_name", "memories"),
		})
	case "postgres":
		return postgresStore.NewStore(&postgresStore.Config{
			Host:      stringValue(cfg.Config, "host", "localhost"),
			Port:      intValue(cfg.Config, "port", 5432),
			User:      stringValue(cfg.Config, "user", "postgres"),
			Password:  stringValue(cfg.Config, "password", ""),
			DBName:    stringValue(cfg.Config, "db_name", "agentmem"),
			TableName: stringValue(cfg.Config, "table_name", "memories"),
			SSLMode:   stringValue(cfg.Config, "ssl_mode", "disable"),
		})
	case "mysql":
		return mysqlStore.NewStore(&mysqlStore.Config{
			Host:      stringValue(cfg.Config, "host", "127.0.0.1"),
			Port:      intValue(cfg.Config, "port", 3306),
			User:      stringValue(cfg.Config, "user", "root"),
			Password:  stringValue(cfg.Config, "password", ""),
			DBName:    stringValue(cfg.Config, "db_name", "agentmem"),
			TableName: stringValue(cfg.Config, "table_name", "memories"),
		})
	default:
		return nil, NewMemoryError("initStore", fmt.Errorf("%w: unknown store provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// initEmbedder initializes the embedding provider.
func initEmbedder(cfg *EmbedderConfig) (embedder.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiEmbedder.NewClient(&openaiEmbedder.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, NewMemoryError("initEmbedder", fmt.Errorf("%w: unknown embedder provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function searches for a .env file (current directory, then up to five
// levels up) and loads it before reading:
//
//   - AGENTMEM_STORE (memory, jsonfile, sqlite, postgres, mysql; default memory)
//   - AGENTMEM_JSONFILE_PATH, AGENTMEM_SQLITE_PATH, AGENTMEM_TABLE
//   - AGENTMEM_DB_HOST, AGENTMEM_DB_PORT, AGENTMEM_DB_USER,
//     AGENTMEM_DB_PASSWORD, AGENTMEM_DB_NAME, AGENTMEM_DB_SSLMODE
//   - AGENTMEM_MAX_MEMORIES, AGENTMEM_DECAY_RATE
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL,
//     EMBEDDING_BASE_URL, EMBEDDING_DIMS
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("AGENTMEM_STORE", "memory")
	storeConfig := make(map[string]interface{})

	switch provider {
	case "jsonfile":
		storeConfig["path"] = getEnvOrDefault("AGENTMEM_JSONFILE_PATH", "./memories.json")
	case "sqlite":
		storeConfig["db_path"] = getEnvOrDefault("AGENTMEM_SQLITE_PATH", "./agentmem.db")
		storeConfig["table_name"] = getEnvOrDefault("AGENTMEM_TABLE", "memories")
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("AGENTMEM_DB_PORT", "5432"))
		storeConfig["host"] = getEnvOrDefault("AGENTMEM_DB_HOST", "localhost")
		storeConfig["port"] = port
		storeConfig["user"] = getEnvOrDefault("AGENTMEM_DB_USER", "postgres")
		storeConfig["password"] = os.Getenv("AGENTMEM_DB_PASSWORD")
		storeConfig["db_name"] = getEnvOrDefault("AGENTMEM_DB_NAME", "agentmem")
		storeConfig["table_name"] = getEnvOrDefault("AGENTMEM_TABLE", "memories")
		storeConfig["ssl_mode"] = getEnvOrDefault("AGENTMEM_DB_SSLMODE", "disable")
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("AGENTMEM_DB_PORT", "3306"))
		storeConfig["host"] = getEnvOrDefault("AGENTMEM_DB_HOST", "127.0.0.1")
		storeConfig["port"] = port
		storeConfig["user"] = getEnvOrDefault("AGENTMEM_DB_USER", "root")
		storeConfig["password"] = os.Getenv("AGENTMEM_DB_PASSWORD")
		storeConfig["db_name"] = getEnvOrDefault("AGENTMEM_DB_NAME", "agentmem")
		storeConfig["table_name"] = getEnvOrDefault("AGENTMEM_TABLE", "memories")
	}

	config := &Config{
		Store: StoreConfig{
			Provider: provider,
			Config:   storeConfig,
		},
	}

	if n, err := strconv.Atoi(os.Getenv("AGENTMEM_MAX_MEMORIES")); err == nil {
		config.MaxMemories = n
	}
	if rate, err := strconv.ParseFloat(os.Getenv("AGENTMEM_DECAY_RATE"), 64); err == nil {
		config.DecayRate = rate
	} else {
		config.DecayRate = ranking.DefaultDecayRate
	}

	if embedderProvider := os.Getenv("EMBEDDING_PROVIDER"); embedderProvider != "" {
		dims, _ := strconv.Atoi(os.Getenv("EMBEDDING_DIMS"))
		config.Embedder = &EmbedderConfig{
			Provider:   embedderProvider,
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      os.Getenv("EMBEDDING_MODEL"),
			BaseURL:    os.Getenv("EMBEDDING_BASE_URL"),
			Dimensions: dims,
		}
	}

	return config, nil
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}
	return &config, nil
}

// FindEnvFile searches for a .env or .env.example file in the current
// directory and up to five directory levels up. Returns the path and whether
// a file was found.
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// stringValue reads a string from a provider config map with a default.
func stringValue(m map[string]interface{}, key, defaultValue string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// intValue reads an int from a provider config map with a default.
// JSON-decoded configs carry numbers as float64.
func intValue(m map[string]interface{}, key string, defaultValue int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return defaultValue
}
