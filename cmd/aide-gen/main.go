// Command aide-gen expands gazetteer templates into the labeled training
// dataset consumed by the keyword and semantic scorers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aidekit/aide/internal/augment"
	"github.com/aidekit/aide/internal/config"
	"github.com/aidekit/aide/internal/dataset"
	"github.com/aidekit/aide/internal/gazetteer"
	"github.com/aidekit/aide/internal/observe"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "optional YAML config providing defaults for the flags below")
	entitiesDir := flag.String("entities", "", "directory of .entity vocabulary files")
	intentsDir := flag.String("intents", "", "directory of .intent template files")
	out := flag.String("out", "", "output dataset path (must end in .csv)")
	policyName := flag.String("policy", "", "generation policy: combinatorial or random")
	numExamples := flag.Int("num", 0, "per-intent example cap (default 50)")
	attempts := flag.Int("attempts", 0, "per-intent failure budget for the random policy (default 50)")
	seed := flag.Uint64("seed", 0, "seed for the random policy, for reproducible runs")
	parallelism := flag.Int("parallelism", 0, "number of intents generated concurrently")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Flags win over config values; config values win over package defaults.
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "err", err)
			return 1
		}
		if *entitiesDir == "" {
			*entitiesDir = cfg.Data.EntitiesDir
		}
		if *intentsDir == "" {
			*intentsDir = cfg.Data.IntentsDir
		}
		if *out == "" {
			*out = cfg.Data.DatasetPath
		}
		if *policyName == "" {
			*policyName = string(cfg.Generation.Policy)
		}
		if *numExamples == 0 {
			*numExamples = cfg.Generation.NumExamples
		}
		if *attempts == 0 {
			*attempts = cfg.Generation.Attempts
		}
		if *seed == 0 {
			*seed = cfg.Generation.Seed
		}
		if *parallelism == 0 {
			*parallelism = cfg.Generation.Parallelism
		}
	}

	if *entitiesDir == "" || *intentsDir == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "aide-gen: -entities, -intents and -out are required (directly or via -config)")
		flag.Usage()
		return 2
	}

	gaz, err := gazetteer.LoadEntities(*entitiesDir)
	if err != nil {
		slog.Error("failed to load entities", "dir", *entitiesDir, "err", err)
		return 1
	}
	templates, err := gazetteer.LoadIntents(*intentsDir)
	if err != nil {
		slog.Error("failed to load intent templates", "dir", *intentsDir, "err", err)
		return 1
	}
	slog.Info("gazetteer loaded",
		"entities", len(gaz),
		"intents", len(templates),
	)

	policy, err := augment.ForName(*policyName)
	if err != nil {
		slog.Error("invalid policy", "err", err)
		return 2
	}

	ds, ledgers, err := policy.Generate(gaz, templates, augment.Params{
		NumExamples: *numExamples,
		Attempts:    *attempts,
		Seed:        *seed,
		Parallelism: *parallelism,
	})
	if err != nil {
		slog.Error("generation failed", "policy", policy.Name(), "err", err)
		return 1
	}

	report(context.Background(), observe.DefaultMetrics(), ds, ledgers, policy.Name(), *numExamples)

	dir, filename := filepath.Split(*out)
	if dir == "" {
		dir = "."
	}
	if err := dataset.Save(ds, dir, filename); err != nil {
		slog.Error("failed to write dataset", "path", *out, "err", err)
		return 1
	}

	slog.Info("dataset written",
		"path", *out,
		"policy", policy.Name(),
		"intents", len(ds),
		"examples", ds.Len(),
	)
	return 0
}

// report logs the per-intent outcome of a generation run and feeds the
// example and failure counters.
func report(ctx context.Context, m *observe.Metrics, ds dataset.Dataset, ledgers augment.Ledgers, policyName string, numExamples int) {
	for _, label := range ds.Intents() {
		ledger := ledgers[label]
		slog.Info("intent generated",
			"intent", label,
			"examples", len(ds[label]),
			"missing_entity", ledger.MissingEntity,
			"duplicates", ledger.Duplicate,
		)
		m.RecordGeneration(ctx, label, policyName, len(ds[label]), ledger.MissingEntity, ledger.Duplicate)
		if len(ds[label]) < numExamples && ledger.Total() > 0 {
			slog.Warn("example cap not reached", "intent", label, "want", numExamples, "got", len(ds[label]))
		}
	}
}
