// Command aide is the interactive personal-assistant entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aidekit/aide/internal/apps"
	"github.com/aidekit/aide/internal/assistant"
	"github.com/aidekit/aide/internal/config"
	"github.com/aidekit/aide/internal/dataset"
	"github.com/aidekit/aide/internal/dispatch"
	"github.com/aidekit/aide/internal/gazetteer"
	"github.com/aidekit/aide/internal/health"
	"github.com/aidekit/aide/internal/intent"
	"github.com/aidekit/aide/internal/observe"
	"github.com/aidekit/aide/internal/resilience"
	"github.com/aidekit/aide/pkg/embeddings"
	oaembed "github.com/aidekit/aide/pkg/embeddings/openai"
	"github.com/aidekit/aide/pkg/extract"
	extractgaz "github.com/aidekit/aide/pkg/extract/gazetteer"
	"github.com/aidekit/aide/pkg/provider/todo/todoist"
	"github.com/aidekit/aide/pkg/provider/weather/openweather"
	"github.com/aidekit/aide/pkg/scorer"
	"github.com/aidekit/aide/pkg/scorer/keyword"
	llmscorer "github.com/aidekit/aide/pkg/scorer/llm"
	"github.com/aidekit/aide/pkg/scorer/semantic"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "aide: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "aide: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := &slog.LevelVar{}
	level.Set(slogLevel(cfg.Server.LogLevel))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("aide starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "aide",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Embeddings (optional, needed by the semantic scorer) ──────────────────
	var emb embeddings.Provider
	if name := cfg.Embeddings.Name; name != "" {
		emb, err = reg.CreateEmbeddings(cfg.Embeddings)
		if err != nil {
			slog.Error("failed to create embeddings provider", "name", name, "err", err)
			return 1
		}
		slog.Info("provider created", "kind", "embeddings", "name", name)
	}

	// ── Scorer ────────────────────────────────────────────────────────────────
	labels := knownLabels(cfg)
	sc, err := reg.CreateScorer(ctx, cfg.Scorer, config.ScorerDeps{
		DatasetPath: cfg.Data.DatasetPath,
		Embeddings:  emb,
		Labels:      labels,
	})
	if err != nil {
		slog.Error("failed to create scorer", "name", cfg.Scorer.Name, "err", err)
		return 1
	}
	slog.Info("provider created", "kind", "scorer", "name", cfg.Scorer.Name)

	// The readiness probe targets the unwrapped scorer so a fallback chain
	// does not mask a dead backend.
	scorerPinger, _ := sc.(health.Pinger)

	// A scorer entry may name a fallback scorer in its options; the pair is
	// wrapped behind per-backend circuit breakers so a failing remote scorer
	// degrades instead of surfacing errors to the user.
	if fbName := optString(cfg.Scorer.Options, "fallback"); fbName != "" {
		fb, err := reg.CreateScorer(ctx, config.ProviderEntry{Name: fbName}, config.ScorerDeps{
			DatasetPath: cfg.Data.DatasetPath,
			Embeddings:  emb,
			Labels:      labels,
		})
		if err != nil {
			slog.Error("failed to create fallback scorer", "name", fbName, "err", err)
			return 1
		}
		wrapped := resilience.NewScorerFallback(sc, cfg.Scorer.Name, resilience.FallbackConfig{})
		wrapped.AddFallback(fbName, fb)
		sc = wrapped
		slog.Info("scorer fallback enabled", "primary", cfg.Scorer.Name, "fallback", fbName)
	}

	// ── Handler collaborators ─────────────────────────────────────────────────
	deps, checkers, err := buildDeps(cfg)
	if err != nil {
		slog.Error("failed to build handler collaborators", "err", err)
		return 1
	}
	if scorerPinger != nil {
		checkers = append(checkers, health.PingChecker("scorer", scorerPinger))
	}

	// ── Engine + dispatch table ───────────────────────────────────────────────
	engineOpts := []intent.Option{intent.WithRecorder(metrics)}
	if cfg.Intent.Threshold > 0 {
		engineOpts = append(engineOpts, intent.WithThreshold(cfg.Intent.Threshold))
	}
	if len(labels) > 0 {
		engineOpts = append(engineOpts, intent.WithLabels(labels))
	}
	engine, err := intent.New(sc, engineOpts...)
	if err != nil {
		slog.Error("failed to create intent engine", "err", err)
		return 1
	}

	table := dispatch.Builtin(deps, dispatch.WithRecorder(metrics))

	// ── Config hot-reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			level.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level updated", "level", d.NewLogLevel)
		}
		if d.ThresholdChanged {
			engine.SetThreshold(d.NewThreshold)
			slog.Info("confidence threshold updated", "threshold", d.NewThreshold)
		}
	})
	if err != nil {
		slog.Warn("config hot-reload disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Health + metrics listener ─────────────────────────────────────────────
	var srv *http.Server
	if cfg.Server.ListenAddr != "" {
		mux := http.NewServeMux()
		health.New(checkers...).Register(mux)
		mux.Handle("GET /metrics", promhttp.Handler())

		srv = &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           observe.Middleware(metrics)(mux),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("metrics/health listener started", "addr", cfg.Server.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("listener error", "err", err)
			}
		}()
	}

	// ── Assistant loop ────────────────────────────────────────────────────────
	prompt := cfg.Assistant.Prompt
	if prompt == "" {
		prompt = "> "
	}
	a, err := assistant.New(engine, table,
		assistant.NewTerminalInput(os.Stdin, os.Stdout, prompt),
		assistant.NewTerminalOutput(os.Stdout),
	)
	if err != nil {
		slog.Error("failed to create assistant", "err", err)
		return 1
	}

	slog.Info("aide ready — press Ctrl+C to shut down")
	runErr := a.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("run error", "err", runErr)
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("listener shutdown error", "err", err)
		}
	}
	if closer, ok := sc.(interface{ Close() }); ok {
		closer.Close()
	}

	slog.Info("goodbye")
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return 1
	}
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires the scorer and embeddings factories that ship
// with Aide into reg.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterScorer("keyword", func(_ context.Context, _ config.ProviderEntry, deps config.ScorerDeps) (scorer.Scorer, error) {
		ds, err := dataset.Load(deps.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("load training dataset: %w", err)
		}
		return keyword.Train(ds)
	})

	reg.RegisterScorer("llm", func(_ context.Context, entry config.ProviderEntry, deps config.ScorerDeps) (scorer.Scorer, error) {
		backend := optString(entry.Options, "backend")
		if backend == "" {
			backend = "openai"
		}
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return llmscorer.New(backend, entry.Model, deps.Labels, opts...)
	})

	reg.RegisterScorer("semantic", func(ctx context.Context, entry config.ProviderEntry, deps config.ScorerDeps) (scorer.Scorer, error) {
		if deps.Embeddings == nil {
			return nil, errors.New("semantic scorer requires an embeddings provider")
		}
		sc, err := semantic.New(ctx, entry.DSN, deps.Embeddings)
		if err != nil {
			return nil, err
		}
		// Index the current dataset so fresh databases serve predictions
		// immediately. Upserts make this a no-op for already-indexed rows.
		if deps.DatasetPath != "" {
			ds, err := dataset.Load(deps.DatasetPath)
			if err != nil {
				slog.Warn("semantic scorer: dataset not indexed", "path", deps.DatasetPath, "err", err)
			} else if err := sc.Index(ctx, ds); err != nil {
				sc.Close()
				return nil, fmt.Errorf("index dataset: %w", err)
			}
		}
		return sc, nil
	})

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	})
}

// knownLabels derives the intent label set from the training dataset. An
// unreadable dataset yields nil, which leaves the engine's label validation
// off.
func knownLabels(cfg *config.Config) []string {
	if cfg.Data.DatasetPath == "" {
		return nil
	}
	ds, err := dataset.Load(cfg.Data.DatasetPath)
	if err != nil {
		slog.Warn("could not derive intent labels from dataset", "path", cfg.Data.DatasetPath, "err", err)
		return nil
	}
	return ds.Intents()
}

// buildDeps creates the handler collaborators named in cfg, together with the
// readiness checkers probing them.
func buildDeps(cfg *config.Config) (dispatch.Deps, []health.Checker, error) {
	deps := dispatch.Deps{HomeLocation: cfg.Assistant.HomeLocation}
	var checkers []health.Checker

	// Entity extractor for weather locations.
	if cfg.Data.EntitiesDir != "" {
		gaz, err := gazetteer.LoadEntities(cfg.Data.EntitiesDir)
		if err != nil {
			return deps, nil, fmt.Errorf("load entity gazetteer: %w", err)
		}
		deps.Extractor = extractgaz.New(extractVocab(gaz))
	}

	if entry := cfg.Providers.Weather; entry.Name == "openweather" {
		var opts []openweather.Option
		if entry.BaseURL != "" {
			opts = append(opts, openweather.WithBaseURL(entry.BaseURL))
		}
		if units := optString(entry.Options, "units"); units != "" {
			opts = append(opts, openweather.WithUnits(units))
		}
		wc, err := openweather.New(entry.APIKey, opts...)
		if err != nil {
			return deps, nil, fmt.Errorf("create weather client: %w", err)
		}
		deps.Weather = wc

		probeURL := entry.BaseURL
		if probeURL == "" {
			probeURL = "https://api.openweathermap.org"
		}
		checkers = append(checkers, health.ReachableChecker("weather", probeURL, nil))
		slog.Info("provider created", "kind", "weather", "name", entry.Name)
	}

	if entry := cfg.Providers.Todo; entry.Name == "todoist" {
		var opts []todoist.Option
		if entry.BaseURL != "" {
			opts = append(opts, todoist.WithBaseURL(entry.BaseURL))
		}
		tc, err := todoist.New(entry.APIKey, opts...)
		if err != nil {
			return deps, nil, fmt.Errorf("create todo client: %w", err)
		}
		deps.Todo = tc

		probeURL := entry.BaseURL
		if probeURL == "" {
			probeURL = "https://api.todoist.com"
		}
		checkers = append(checkers, health.ReachableChecker("todo", probeURL, nil))
		slog.Info("provider created", "kind", "todo", "name", entry.Name)
	}

	if path := cfg.Assistant.AppCatalog; path != "" {
		catalog, err := apps.LoadCatalog(path)
		if err != nil {
			return deps, nil, fmt.Errorf("load app catalog: %w", err)
		}
		deps.Apps = apps.NewManager(catalog)
		slog.Info("app catalog loaded", "path", path, "apps", len(catalog.Apps))
	}

	return deps, checkers, nil
}

// extractVocab maps gazetteer entity names onto extractor labels. Location
// entities feed the weather handlers; everything else keeps its upper-cased
// file name as the label.
func extractVocab(gaz gazetteer.Gazetteer) map[string][]string {
	vocab := make(map[string][]string, len(gaz))
	for name, values := range gaz {
		switch name {
		case "location", "city", "place":
			vocab[extract.LabelLocation] = append(vocab[extract.LabelLocation], values...)
		case "date", "day", "day_time":
			vocab[extract.LabelDate] = append(vocab[extract.LabelDate], values...)
		default:
			vocab[strings.ToUpper(name)] = values
		}
	}
	return vocab
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
