package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider slot.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"scorer":     {"keyword", "llm", "semantic"},
	"embeddings": {"openai"},
	"weather":    {"openweather"},
	"todo":       {"todoist"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Generation
	if cfg.Generation.Policy != "" && !cfg.Generation.Policy.IsValid() {
		errs = append(errs, fmt.Errorf("generation.policy %q is invalid; valid values: combinatorial, random", cfg.Generation.Policy))
	}
	if cfg.Generation.NumExamples < 0 {
		errs = append(errs, fmt.Errorf("generation.num_examples %d must not be negative", cfg.Generation.NumExamples))
	}
	if cfg.Generation.Attempts < 0 {
		errs = append(errs, fmt.Errorf("generation.attempts %d must not be negative", cfg.Generation.Attempts))
	}
	if cfg.Generation.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("generation.parallelism %d must not be negative", cfg.Generation.Parallelism))
	}

	// Intent
	if cfg.Intent.Threshold < 0 {
		errs = append(errs, fmt.Errorf("intent.threshold %.2f must not be negative", cfg.Intent.Threshold))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("scorer", cfg.Scorer.Name)
	validateProviderName("embeddings", cfg.Embeddings.Name)
	validateProviderName("weather", cfg.Providers.Weather.Name)
	validateProviderName("todo", cfg.Providers.Todo.Name)

	// Scorer cross-validation
	switch cfg.Scorer.Name {
	case "keyword":
		if cfg.Data.DatasetPath == "" {
			errs = append(errs, errors.New("scorer \"keyword\" requires data.dataset_path"))
		}
	case "semantic":
		if cfg.Scorer.DSN == "" {
			errs = append(errs, errors.New("scorer \"semantic\" requires scorer.dsn"))
		}
		if cfg.Embeddings.Name == "" {
			errs = append(errs, errors.New("scorer \"semantic\" requires an embeddings provider"))
		}
	case "llm":
		if cfg.Scorer.Model == "" {
			slog.Warn("scorer.model is empty; the llm scorer will use the backend default")
		}
	}

	// Collaborator availability warnings
	if cfg.Providers.Weather.Name != "" && cfg.Providers.Weather.APIKey == "" {
		slog.Warn("providers.weather is configured without an api_key; weather requests will fail")
	}
	if cfg.Providers.Todo.Name != "" && cfg.Providers.Todo.APIKey == "" {
		slog.Warn("providers.todo is configured without an api_key; to-do requests will fail")
	}
	if cfg.Assistant.HomeLocation == "" {
		slog.Warn("assistant.home_location is empty; weather requests without a location will fail")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
