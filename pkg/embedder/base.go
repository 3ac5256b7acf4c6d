// Package embedder provides the injected embedding collaborator.
//
// It defines the Provider interface that embedding implementations must
// satisfy. The engine never bundles an embedding model of its own: callers
// inject a Provider (or a bare function via Func) when they want
// similarity-based relevance instead of keyword overlap.
package embedder

import "context"

// Provider defines the interface for embedding providers.
type Provider interface {
	// Embed converts a text string into a vector embedding.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch converts multiple text strings into vector embeddings.
	// More efficient than calling Embed repeatedly when the backend
	// supports batching.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the dimension of vectors produced by this provider.
	Dimensions() int

	// Close closes the provider and releases resources.
	Close() error
}

// Func adapts a plain text -> vector function into a Provider.
//
// Useful for tests and for callers that already have an embedding callable:
//
//	provider := embedder.Func(func(ctx context.Context, text string) ([]float64, error) {
//	    return myModel.Encode(text), nil
//	})
type Func func(ctx context.Context, text string) ([]float64, error)

// Embed invokes the wrapped function.
func (f Func) Embed(ctx context.Context, text string) ([]float64, error) {
	return f(ctx, text)
}

// EmbedBatch invokes the wrapped function once per text.
func (f Func) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))
	for _, text := range texts {
		v, err := f(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

// Dimensions is unknown for a bare function and reports 0.
func (f Func) Dimensions() int { return 0 }

// Close is a no-op for a bare function.
func (f Func) Close() error { return nil }
