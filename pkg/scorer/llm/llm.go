// Package llm implements an intent scorer that asks a Large Language Model to
// grade every candidate label for an utterance.
//
// The backend is any provider supported by github.com/mozilla-ai/any-llm-go
// (OpenAI, Anthropic, Gemini, Ollama, Mistral, Groq, local llama.cpp). The
// model is instructed to reply with a single JSON object mapping each
// candidate label to a score between 0 and 10; the reply is parsed strictly
// and validated against the configured label set.
//
// This scorer trades latency and cost for zero-shot coverage: it needs no
// training corpus, only the label list.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	anyllm "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/aidekit/aide/pkg/scorer"
)

const systemPrompt = `You score how well a short utterance matches each intent label.
Reply with a single JSON object and nothing else. Keys are exactly the given
labels; values are numbers from 0 (no match) to 10 (certain match). Every
label must appear exactly once.`

// Scorer implements scorer.Scorer by delegating to an LLM judge.
type Scorer struct {
	backend anyllm.Provider
	model   string
	labels  []string
}

var _ scorer.Scorer = (*Scorer)(nil)

// New creates a Scorer for the given backend provider name and model, scoring
// against labels.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama",
// "mistral", "groq", "llamacpp". opts are any-llm-go options (e.g.
// anyllm.WithAPIKey, anyllm.WithBaseURL); without an API key option the
// backend falls back to its environment variable (OPENAI_API_KEY, ...).
func New(providerName, model string, labels []string, opts ...anyllm.Option) (*Scorer, error) {
	if model == "" {
		return nil, fmt.Errorf("llm scorer: model must not be empty")
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("llm scorer: labels must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("llm scorer: create %q backend: %w", providerName, err)
	}

	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.Strings(sorted)

	return &Scorer{backend: backend, model: model, labels: sorted}, nil
}

// createBackend creates the underlying any-llm-go provider.
func createBackend(providerName string, opts ...anyllm.Option) (anyllm.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, mistral, groq, llamacpp", providerName)
	}
}

// Labels returns the configured label set in sorted order.
func (s *Scorer) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Score implements scorer.Scorer.
func (s *Scorer) Score(ctx context.Context, text string) (scorer.Prediction, error) {
	temp := 0.0
	resp, err := s.backend.Completion(ctx, anyllm.CompletionParams{
		Model:       s.model,
		Temperature: &temp,
		Messages: []anyllm.Message{
			{Role: anyllm.RoleSystem, Content: systemPrompt},
			{Role: anyllm.RoleUser, Content: s.buildPrompt(text)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm scorer: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm scorer: empty choices in response")
	}

	return s.parseScores(resp.Choices[0].Message.ContentString())
}

// buildPrompt renders the judge request for one utterance.
func (s *Scorer) buildPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Labels: ")
	b.WriteString(strings.Join(s.labels, ", "))
	b.WriteString("\nUtterance: ")
	b.WriteString(text)
	return b.String()
}

// parseScores extracts and validates the JSON score object from the model
// reply. Replies wrapped in markdown code fences are unwrapped first; scores
// outside [0, 10] or labels outside the configured set are rejected.
func (s *Scorer) parseScores(content string) (scorer.Prediction, error) {
	raw := strings.TrimSpace(content)
	if after, ok := strings.CutPrefix(raw, "```json"); ok {
		raw = after
	} else if after, ok := strings.CutPrefix(raw, "```"); ok {
		raw = after
	}
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "```"))

	var scores map[string]float64
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return nil, fmt.Errorf("llm scorer: parse reply %q: %w", content, err)
	}

	known := make(map[string]struct{}, len(s.labels))
	for _, l := range s.labels {
		known[l] = struct{}{}
	}

	pred := make(scorer.Prediction, len(s.labels))
	for label, score := range scores {
		if _, ok := known[label]; !ok {
			return nil, fmt.Errorf("llm scorer: reply contains unknown label %q", label)
		}
		if score < 0 || score > 10 {
			return nil, fmt.Errorf("llm scorer: score %v for %q outside [0, 10]", score, label)
		}
		pred[label] = score
	}
	for _, l := range s.labels {
		if _, ok := pred[l]; !ok {
			return nil, fmt.Errorf("llm scorer: reply missing label %q", l)
		}
	}
	return pred, nil
}
