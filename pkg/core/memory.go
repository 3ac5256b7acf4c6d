package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/agentmem-labs/agentmem-go/pkg/embedder"
	"github.com/agentmem-labs/agentmem-go/pkg/ranking"
	"github.com/agentmem-labs/agentmem-go/pkg/storage"
)

const (
	// DefaultTopK is the default number of recall results.
	DefaultTopK = 5

	// DefaultMaxMemories is the default capacity before pruning kicks in.
	DefaultMaxMemories = 1000
)

// AgentMemory is the memory engine for a single agent session.
//
// It owns exactly one storage backend and orchestrates storage, ranked
// retrieval, and capacity management:
//   - Remember persists a new memory and prunes when capacity is exceeded
//   - Recall scores every stored memory against a query (relevance, recency,
//     importance) and returns the top-k, updating access tracking
//   - Forget removes a memory; GetContext renders recall output for prompt
//     injection
//
// All operations are serialized by an internal mutex, covering the multi-step
// read-modify-write sequences (recall access tracking, pruning) that a bare
// store cannot make atomic. Independent AgentMemory instances over different
// stores need no cross-instance coordination.
type AgentMemory struct {
	store       storage.Store
	embedder    embedder.Provider
	ranker      *ranking.Ranker
	logger      *zap.Logger
	maxMemories int

	// snowflakeNode generates unique, time-ordered memory IDs.
	snowflakeNode *snowflake.Node

	mu sync.Mutex
}

// Option configures an AgentMemory.
type Option func(*AgentMemory)

// WithEmbedder injects the embedding collaborator. Without one, recall
// relevance falls back to keyword overlap.
func WithEmbedder(p embedder.Provider) Option {
	return func(a *AgentMemory) {
		a.embedder = p
	}
}

// WithEmbedderFunc injects a bare text -> vector function as the embedding
// collaborator.
func WithEmbedderFunc(f func(ctx context.Context, text string) ([]float64, error)) Option {
	return func(a *AgentMemory) {
		a.embedder = embedder.Func(f)
	}
}

// WithMaxMemories sets the capacity limit that triggers pruning.
// A limit of 0 disables pruning entirely.
func WithMaxMemories(n int) Option {
	return func(a *AgentMemory) {
		a.maxMemories = n
	}
}

// WithDecayRate sets the recency decay rate used in ranking.
func WithDecayRate(rate float64) Option {
	return func(a *AgentMemory) {
		a.ranker = ranking.NewRanker(rate)
	}
}

// WithLogger injects the surrounding application's structured logger. Failed
// operations are logged before the error is surfaced. Defaults to a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *AgentMemory) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an AgentMemory over the given store.
//
// The store and embedder are injected rather than looked up from any global
// registry; the caller owns their lifecycle boundaries, and Close tears both
// down.
//
// Example:
//
//	mem, err := core.New(memorystore.NewStore(),
//	    core.WithMaxMemories(500),
//	    core.WithLogger(logger),
//	)
func New(store storage.Store, opts ...Option) (*AgentMemory, error) {
	if store == nil {
		return nil, NewMemoryError("New", fmt.Errorf("%w: store is required", ErrInvalidConfig))
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewMemoryError("New", err)
	}

	a := &AgentMemory{
		store:         store,
		ranker:        ranking.NewRanker(ranking.DefaultDecayRate),
		logger:        zap.NewNop(),
		maxMemories:   DefaultMaxMemories,
		snowflakeNode: node,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Remember creates and persists a new memory.
//
// The memory gets a fresh unique ID and the current timestamp. When an
// embedder is configured and no precomputed embedding was supplied, one is
// generated from the content; embedding failure degrades to keyword-only
// relevance rather than failing the write. After persisting, the stored count
// is checked against the capacity limit and lowest-ranked memories are pruned
// synchronously before Remember returns.
//
// Example:
//
//	m, err := mem.Remember(ctx, "Project uses FastAPI for backend",
//	    core.WithMemoryType(core.TypeSemantic),
//	    core.WithImportance(core.ImportanceHigh),
//	)
func (a *AgentMemory) Remember(ctx context.Context, content string, opts ...RememberOption) (*Memory, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	options := applyRememberOptions(opts)

	if strings.TrimSpace(content) == "" {
		return nil, NewMemoryError("Remember", ErrEmptyContent)
	}
	if !options.MemoryType.Valid() {
		return nil, NewMemoryError("Remember", fmt.Errorf("%w: %q", ErrInvalidMemoryType, options.MemoryType))
	}
	if !options.Importance.Valid() {
		return nil, NewMemoryError("Remember", fmt.Errorf("%w: %d", ErrInvalidImportance, options.Importance))
	}

	embedding := options.Embedding
	if embedding == nil && a.embedder != nil {
		vector, err := a.embedder.Embed(ctx, content)
		if err != nil {
			a.logger.Warn("embedding generation failed, storing without embedding",
				zap.Error(err))
		} else {
			embedding = vector
		}
	}

	memory := &Memory{
		ID:         a.snowflakeNode.Generate().Int64(),
		Content:    content,
		MemoryType: options.MemoryType,
		Importance: options.Importance,
		Embedding:  embedding,
		Metadata:   options.Metadata,
		CreatedAt:  time.Now(),
	}

	if err := a.store.Save(ctx, toStorageMemory(memory)); err != nil {
		a.logger.Error("memory save failed", zap.Int64("id", memory.ID), zap.Error(err))
		return nil, NewMemoryError("Remember", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}

	if err := a.pruneLocked(ctx); err != nil {
		return nil, NewMemoryError("Remember", err)
	}
	return memory, nil
}

// Recall returns the stored memories most relevant to the query, ranked by
// combined score (0.4 relevance, 0.3 recency, 0.3 importance), at most k
// results.
//
// Every returned memory has its access count incremented and its last-access
// time updated, and that mutation is persisted before Recall returns. An
// empty store yields an empty result; an empty query is a validation error; a
// non-positive k yields an empty result.
func (a *AgentMemory) Recall(ctx context.Context, query string, opts ...RecallOption) ([]*RetrievalResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recallLocked(ctx, query, applyRecallOptions(opts))
}

func (a *AgentMemory) recallLocked(ctx context.Context, query string, options *RecallOptions) ([]*RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, NewMemoryError("Recall", ErrEmptyQuery)
	}
	if options.TopK <= 0 {
		return []*RetrievalResult{}, nil
	}

	memories, err := a.store.ListAll(ctx)
	if err != nil {
		a.logger.Error("memory list failed", zap.Error(err))
		return nil, NewMemoryError("Recall", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}

	filtered := memories[:0]
	for _, m := range memories {
		if options.TypeFilter != "" && m.MemoryType != string(options.TypeFilter) {
			continue
		}
		if options.MinImportance != 0 && m.Importance < int(options.MinImportance) {
			continue
		}
		filtered = append(filtered, m)
	}
	if len(filtered) == 0 {
		return []*RetrievalResult{}, nil
	}

	var queryEmbedding []float64
	if a.embedder != nil {
		vector, err := a.embedder.Embed(ctx, query)
		if err != nil {
			a.logger.Warn("query embedding failed, falling back to keyword relevance",
				zap.Error(err))
		} else {
			queryEmbedding = vector
		}
	}

	now := time.Now()
	ranked := a.ranker.Rank(filtered, ranking.NewQuery(query, queryEmbedding), now)
	if len(ranked) > options.TopK {
		ranked = ranked[:options.TopK]
	}

	results := make([]*RetrievalResult, 0, len(ranked))
	for _, r := range ranked {
		m := r.Memory
		m.AccessCount++
		accessed := now
		m.LastAccessedAt = &accessed
		if err := a.store.Save(ctx, m); err != nil {
			a.logger.Error("access tracking update failed",
				zap.Int64("id", m.ID), zap.Error(err))
			return nil, NewMemoryError("Recall", fmt.Errorf("%w: %v", ErrStorageOperation, err))
		}

		results = append(results, &RetrievalResult{
			Memory:          fromStorageMemory(m),
			RelevanceScore:  r.Scores.Relevance,
			RecencyScore:    r.Scores.Recency,
			ImportanceScore: r.Scores.Importance,
			CombinedScore:   r.Scores.Combined,
		})
	}
	return results, nil
}

// Get retrieves a single memory by ID without touching access tracking.
func (a *AgentMemory) Get(ctx context.Context, id int64) (*Memory, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	m, err := a.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewMemoryError("Get", ErrNotFound)
		}
		a.logger.Error("memory get failed", zap.Int64("id", id), zap.Error(err))
		return nil, NewMemoryError("Get", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	return fromStorageMemory(m), nil
}

// Forget deletes the memory with the given ID.
//
// Forgetting a missing ID is a no-op, not an error: agent retry loops call
// Forget repeatedly and must stay idempotent.
func (a *AgentMemory) Forget(ctx context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.store.Delete(ctx, id); err != nil {
		a.logger.Error("memory delete failed", zap.Int64("id", id), zap.Error(err))
		return NewMemoryError("Forget", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	return nil
}

// GetContext recalls memories for the query and formats them into a text
// block suitable for LLM prompt injection, one line per memory in descending
// combined-score order:
//
//	- [SEMANTIC] Project uses FastAPI for backend
//	- [EPISODIC] user asked about deployment on friday
//
// Content is not truncated unless WithMaxEntryLength is set. An empty recall
// returns an empty string.
func (a *AgentMemory) GetContext(ctx context.Context, query string, opts ...RecallOption) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	options := applyRecallOptions(opts)
	results, err := a.recallLocked(ctx, query, options)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, r := range results {
		content := r.Memory.Content
		if options.MaxEntryLength > 0 {
			runes := []rune(content)
			if len(runes) > options.MaxEntryLength {
				content = string(runes[:options.MaxEntryLength]) + "..."
			}
		}
		fmt.Fprintf(&b, "- [%s] %s\n", strings.ToUpper(string(r.Memory.MemoryType)), content)
	}
	return b.String(), nil
}

// Count returns the number of stored memories.
func (a *AgentMemory) Count(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	count, err := a.store.Count(ctx)
	if err != nil {
		return 0, NewMemoryError("Count", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	return count, nil
}

// Clear removes every stored memory.
func (a *AgentMemory) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.DeleteAll(ctx); err != nil {
		a.logger.Error("memory clear failed", zap.Error(err))
		return NewMemoryError("Clear", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	return nil
}

// Close closes the store and the embedder, returning the first error.
func (a *AgentMemory) Close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// pruneLocked evicts lowest-ranked memories until the stored count is back at
// or below the capacity limit. Ranking uses the neutral query: with no
// current query, relevance contributes nothing and eviction order is recency
// plus importance, lowest first, oldest-first ties.
//
// Callers must hold a.mu.
func (a *AgentMemory) pruneLocked(ctx context.Context) error {
	if a.maxMemories <= 0 {
		return nil
	}

	count, err := a.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageOperation, err)
	}
	if count <= a.maxMemories {
		return nil
	}

	memories, err := a.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageOperation, err)
	}

	ranked := a.ranker.RankForEviction(memories, time.Now())
	excess := len(ranked) - a.maxMemories
	for i := 0; i < excess; i++ {
		victim := ranked[i].Memory
		if _, err := a.store.Delete(ctx, victim.ID); err != nil {
			a.logger.Error("prune eviction failed",
				zap.Int64("id", victim.ID), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrStorageOperation, err)
		}
		a.logger.Debug("pruned memory",
			zap.Int64("id", victim.ID),
			zap.Float64("score", ranked[i].Scores.Combined))
	}
	return nil
}
