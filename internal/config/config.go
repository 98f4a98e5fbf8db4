// Package config provides the configuration schema, loader, and provider
// registry for the Aide assistant.
package config

// LogLevel controls log verbosity for the Aide process.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// PolicyName selects the dataset generation policy.
type PolicyName string

const (
	// PolicyCombinatorial expands every template against the full Cartesian
	// product of its placeholder values.
	PolicyCombinatorial PolicyName = "combinatorial"

	// PolicyRandom samples templates and values uniformly under an attempt
	// budget.
	PolicyRandom PolicyName = "random"
)

// IsValid reports whether p is a recognised generation policy.
func (p PolicyName) IsValid() bool {
	return p == PolicyCombinatorial || p == PolicyRandom
}

// Config is the root configuration structure for Aide.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Data       DataConfig       `yaml:"data"`
	Generation GenerationConfig `yaml:"generation"`
	Intent     IntentConfig     `yaml:"intent"`
	Scorer     ProviderEntry    `yaml:"scorer"`
	Embeddings ProviderEntry    `yaml:"embeddings"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Assistant  AssistantConfig  `yaml:"assistant"`
}

// ServerConfig holds network and logging settings for the metrics/health
// listener.
type ServerConfig struct {
	// ListenAddr is the TCP address the metrics/health server listens on
	// (e.g., ":8080"). Empty disables the listener.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// DataConfig locates the training material on disk.
type DataConfig struct {
	// EntitiesDir holds the .entity gazetteer files.
	EntitiesDir string `yaml:"entities_dir"`

	// IntentsDir holds the .intent template files.
	IntentsDir string `yaml:"intents_dir"`

	// DatasetPath is the generated CSV dataset consumed by the keyword
	// scorer and the semantic indexer.
	DatasetPath string `yaml:"dataset_path"`
}

// GenerationConfig tunes the template expander.
type GenerationConfig struct {
	// Policy selects the expansion strategy. Default: combinatorial.
	Policy PolicyName `yaml:"policy"`

	// NumExamples is the per-intent example quota. Default: 50.
	NumExamples int `yaml:"num_examples"`

	// Attempts bounds failed expansion attempts per intent under the random
	// policy. Default: 50.
	Attempts int `yaml:"attempts"`

	// Seed fixes the random policy's sampling so runs are reproducible.
	// The zero value is itself a valid fixed seed.
	Seed uint64 `yaml:"seed"`

	// Parallelism bounds concurrent per-intent generation. Values below 2
	// generate sequentially.
	Parallelism int `yaml:"parallelism"`
}

// IntentConfig tunes the decision engine.
type IntentConfig struct {
	// Threshold is the confidence gate; predictions below it degrade to the
	// unknown intent. Zero means the engine default (0.5).
	Threshold float64 `yaml:"threshold"`
}

// ProviderEntry is the common configuration block shared by all provider
// slots. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered implementation (e.g., "keyword", "openai").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o").
	Model string `yaml:"model"`

	// DSN is the backing-store connection string for providers that need one
	// (the semantic scorer's PostgreSQL database).
	DSN string `yaml:"dsn"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or
	// nested maps.
	Options map[string]any `yaml:"options"`
}

// ProvidersConfig declares the external collaborators the handlers use.
type ProvidersConfig struct {
	Weather ProviderEntry `yaml:"weather"`
	Todo    ProviderEntry `yaml:"todo"`
}

// AssistantConfig holds interaction-loop settings.
type AssistantConfig struct {
	// HomeLocation is the fallback location for weather requests that name
	// none.
	HomeLocation string `yaml:"home_location"`

	// Prompt is printed before each terminal read. Default: "> ".
	Prompt string `yaml:"prompt"`

	// AppCatalog is the path to the YAML app catalog used by the open/close
	// handlers. Empty disables app control.
	AppCatalog string `yaml:"app_catalog"`
}
