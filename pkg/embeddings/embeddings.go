// Package embeddings defines the Provider interface for vector embedding
// backends.
//
// A provider maps utterances to dense float32 vectors used by the semantic
// intent scorer for nearest-neighbour lookup. All vectors produced by one
// Provider instance share a single dimensionality; mixing vectors from
// different instances in the same index corrupts the similarity space.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider is the abstraction over any text-embedding backend.
type Provider interface {
	// Embed computes the embedding vector for a single utterance. Returns a
	// float32 slice of length Dimensions() or an error if the request fails
	// or ctx is cancelled. The text is passed through verbatim.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embedding vectors for texts in a single provider
	// call. The i-th result corresponds to texts[i]. Partial results are not
	// returned: on error the slice is nil.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every vector produced by this
	// provider, constant for the instance's lifetime.
	Dimensions() int

	// ModelID returns the backend's model identifier, for logging and for
	// detecting index/model mismatches across restarts.
	ModelID() string
}
