package config_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aidekit/aide/internal/config"
	"github.com/aidekit/aide/pkg/embeddings"
	embmock "github.com/aidekit/aide/pkg/embeddings/mock"
	"github.com/aidekit/aide/pkg/scorer"
	scorermock "github.com/aidekit/aide/pkg/scorer/mock"
)

func TestLoadFromReader_DecodesAllSections(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Data.EntitiesDir != "data/entities" {
		t.Errorf("entities_dir = %q", cfg.Data.EntitiesDir)
	}
	if cfg.Data.IntentsDir != "data/intents" {
		t.Errorf("intents_dir = %q", cfg.Data.IntentsDir)
	}
	if cfg.Generation.NumExamples != 50 || cfg.Generation.Attempts != 50 {
		t.Errorf("generation = %+v", cfg.Generation)
	}
	if cfg.Generation.Parallelism != 4 {
		t.Errorf("parallelism = %d", cfg.Generation.Parallelism)
	}
	if cfg.Embeddings.APIKey != "sk-test" {
		t.Errorf("embeddings api_key = %q", cfg.Embeddings.APIKey)
	}
	if cfg.Providers.Todo.Name != "todoist" {
		t.Errorf("todo provider = %q", cfg.Providers.Todo.Name)
	}
	if cfg.Assistant.Prompt != "> " {
		t.Errorf("prompt = %q", cfg.Assistant.Prompt)
	}
}

func TestRegistry_CreateScorer(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	want := &scorermock.Scorer{Result: scorer.Prediction{"greeting": 1}}
	var gotEntry config.ProviderEntry
	var gotDeps config.ScorerDeps
	reg.RegisterScorer("keyword", func(_ context.Context, entry config.ProviderEntry, deps config.ScorerDeps) (scorer.Scorer, error) {
		gotEntry, gotDeps = entry, deps
		return want, nil
	})

	entry := config.ProviderEntry{Name: "keyword", Model: "ignored"}
	deps := config.ScorerDeps{DatasetPath: "dataset.csv", Labels: []string{"greeting"}}
	got, err := reg.CreateScorer(context.Background(), entry, deps)
	if err != nil {
		t.Fatalf("CreateScorer: %v", err)
	}
	if got != scorer.Scorer(want) {
		t.Error("factory result not returned")
	}
	if gotEntry.Name != "keyword" || gotDeps.DatasetPath != "dataset.csv" {
		t.Errorf("factory received entry=%+v deps=%+v", gotEntry, gotDeps)
	}
}

func TestRegistry_CreateScorer_Unregistered(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	_, err := reg.CreateScorer(context.Background(), config.ProviderEntry{Name: "semantic"}, config.ScorerDeps{})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
	if !strings.Contains(err.Error(), "semantic") {
		t.Errorf("error %q should name the provider", err)
	}
}

func TestRegistry_CreateEmbeddings(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	want := &embmock.Provider{DimensionsValue: 4}
	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		if entry.APIKey != "sk-test" {
			t.Errorf("factory api_key = %q", entry.APIKey)
		}
		return want, nil
	})

	got, err := reg.CreateEmbeddings(config.ProviderEntry{Name: "openai", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("CreateEmbeddings: %v", err)
	}
	if got != embeddings.Provider(want) {
		t.Error("factory result not returned")
	}
}

func TestRegistry_CreateEmbeddings_Unregistered(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	_, err := reg.CreateEmbeddings(config.ProviderEntry{Name: "cohere"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistry_OverwriteFactory(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	reg.RegisterScorer("keyword", func(context.Context, config.ProviderEntry, config.ScorerDeps) (scorer.Scorer, error) {
		return nil, errors.New("old factory")
	})
	want := &scorermock.Scorer{}
	reg.RegisterScorer("keyword", func(context.Context, config.ProviderEntry, config.ScorerDeps) (scorer.Scorer, error) {
		return want, nil
	})

	got, err := reg.CreateScorer(context.Background(), config.ProviderEntry{Name: "keyword"}, config.ScorerDeps{})
	if err != nil {
		t.Fatalf("CreateScorer: %v", err)
	}
	if got != scorer.Scorer(want) {
		t.Error("later registration should win")
	}
}
