package config

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aidekit/aide/pkg/embeddings"
	"github.com/aidekit/aide/pkg/scorer"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// ScorerDeps carries the collaborators a scorer factory may need. Which
// fields are consulted depends on the scorer: keyword reads the dataset,
// semantic needs the embeddings provider.
type ScorerDeps struct {
	// DatasetPath is the CSV training dataset on disk.
	DatasetPath string

	// Embeddings is the configured embeddings provider, nil when none is.
	Embeddings embeddings.Provider

	// Labels is the full intent label set, for scorers that need it declared
	// up front (the llm judge).
	Labels []string
}

// ScorerFactory builds a scorer from its config entry and dependencies.
type ScorerFactory func(ctx context.Context, entry ProviderEntry, deps ScorerDeps) (scorer.Scorer, error)

// EmbeddingsFactory builds an embeddings provider from its config entry.
type EmbeddingsFactory func(entry ProviderEntry) (embeddings.Provider, error)

// Registry maps provider names to their constructor functions for each
// provider slot. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	scorers    map[string]ScorerFactory
	embeddings map[string]EmbeddingsFactory
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		scorers:    make(map[string]ScorerFactory),
		embeddings: make(map[string]EmbeddingsFactory),
	}
}

// RegisterScorer registers a scorer factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterScorer(name string, factory ScorerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scorers[name] = factory
}

// RegisterEmbeddings registers an embeddings provider factory under name.
func (r *Registry) RegisterEmbeddings(name string, factory EmbeddingsFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeddings[name] = factory
}

// CreateScorer instantiates a scorer using the factory registered under
// entry.Name. Returns [ErrProviderNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) CreateScorer(ctx context.Context, entry ProviderEntry, deps ScorerDeps) (scorer.Scorer, error) {
	r.mu.RLock()
	factory, ok := r.scorers[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: scorer/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(ctx, entry, deps)
}

// CreateEmbeddings instantiates an embeddings provider using the factory
// registered under entry.Name.
func (r *Registry) CreateEmbeddings(entry ProviderEntry) (embeddings.Provider, error) {
	r.mu.RLock()
	factory, ok := r.embeddings[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: embeddings/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
