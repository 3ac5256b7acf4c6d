package core

// RememberOption configures a Remember call using the functional options
// pattern.
type RememberOption func(*RememberOptions)

// RememberOptions contains configuration for Remember operations.
type RememberOptions struct {
	// MemoryType is the classification for the new memory.
	MemoryType MemoryType

	// Importance is the significance level for the new memory.
	Importance Importance

	// Metadata is caller-owned structured information stored with the memory.
	Metadata map[string]interface{}

	// Embedding is a precomputed embedding. When absent and an embedder is
	// configured, the engine computes one.
	Embedding []float64
}

// WithMemoryType sets the memory type for a Remember call.
//
// Example:
//
//	m, _ := mem.Remember(ctx, "deploys run via make release", core.WithMemoryType(core.TypeProcedural))
func WithMemoryType(t MemoryType) RememberOption {
	return func(opts *RememberOptions) {
		opts.MemoryType = t
	}
}

// WithImportance sets the importance level for a Remember call.
func WithImportance(i Importance) RememberOption {
	return func(opts *RememberOptions) {
		opts.Importance = i
	}
}

// WithMetadata sets caller metadata for a Remember call.
//
// Example:
//
//	m, _ := mem.Remember(ctx, "content",
//	    core.WithMetadata(map[string]interface{}{"source": "conversation"}),
//	)
func WithMetadata(metadata map[string]interface{}) RememberOption {
	return func(opts *RememberOptions) {
		opts.Metadata = metadata
	}
}

// WithEmbedding attaches a precomputed embedding to a Remember call,
// bypassing the configured embedder for this memory.
func WithEmbedding(embedding []float64) RememberOption {
	return func(opts *RememberOptions) {
		opts.Embedding = embedding
	}
}

// RecallOption configures a Recall or GetContext call.
type RecallOption func(*RecallOptions)

// RecallOptions contains configuration for Recall operations.
type RecallOptions struct {
	// TopK is the maximum number of results to return.
	TopK int

	// TypeFilter restricts results to one memory type when non-empty.
	TypeFilter MemoryType

	// MinImportance restricts results to memories at or above this level
	// when non-zero.
	MinImportance Importance

	// MaxEntryLength caps each memory's contribution to GetContext output,
	// in runes. Zero means no truncation.
	MaxEntryLength int
}

// WithTopK sets the maximum number of recall results.
//
// Example:
//
//	results, _ := mem.Recall(ctx, "database migrations", core.WithTopK(3))
func WithTopK(k int) RecallOption {
	return func(opts *RecallOptions) {
		opts.TopK = k
	}
}

// WithTypeFilter restricts recall to a single memory type.
func WithTypeFilter(t MemoryType) RecallOption {
	return func(opts *RecallOptions) {
		opts.TypeFilter = t
	}
}

// WithMinImportance restricts recall to memories at or above the given
// importance level.
func WithMinImportance(i Importance) RecallOption {
	return func(opts *RecallOptions) {
		opts.MinImportance = i
	}
}

// WithMaxEntryLength caps each memory's contribution to the formatted
// context at n runes, appending an ellipsis when truncated.
func WithMaxEntryLength(n int) RecallOption {
	return func(opts *RecallOptions) {
		opts.MaxEntryLength = n
	}
}

// applyRememberOptions applies options over the defaults.
func applyRememberOptions(opts []RememberOption) *RememberOptions {
	options := &RememberOptions{
		MemoryType: TypeEpisodic,
		Importance: ImportanceMedium,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyRecallOptions applies options over the defaults.
func applyRecallOptions(opts []RecallOption) *RecallOptions {
	options := &RecallOptions{
		TopK: DefaultTopK,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
