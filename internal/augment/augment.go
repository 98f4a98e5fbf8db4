// Package augment expands a small set of hand-written intent templates and
// entity gazetteers into a labeled training corpus.
//
// Two generation policies are provided behind the [Policy] interface:
//
//   - [CombinatorialPolicy] deterministically enumerates the full Cartesian
//     product of every template's entity slots. Good for reproducible
//     fixtures over small entity spaces.
//   - [RandomPolicy] draws bounded random samples with explicit failure
//     accounting, scaling to gazetteers where full expansion is intractable.
//
// Both policies deduplicate per intent and cap each intent's output at
// [Params.NumExamples]. Intents are independent of each other: with
// [Params.Parallelism] > 1 they are generated concurrently, reading the
// shared gazetteer and writing only their own accumulator.
package augment

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aidekit/aide/internal/dataset"
	"github.com/aidekit/aide/internal/gazetteer"
)

// ErrNoExamples is returned by the combinatorial policy when no intent
// produced a single example, leaving nothing to train on.
var ErrNoExamples = errors.New("augment: no examples generated")

// placeholderPattern matches {entity_name} slots inside a template.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Params bounds a generation run.
type Params struct {
	// NumExamples caps each intent's example count. Values < 1 default to
	// DefaultNumExamples.
	NumExamples int

	// Attempts is the randomized policy's per-intent failure budget:
	// generation for an intent stops once missing-entity plus duplicate
	// failures reach this value. Ignored by the combinatorial policy.
	// Values < 1 default to DefaultAttempts.
	Attempts int

	// Seed fixes the randomized policy's source so runs are reproducible.
	Seed uint64

	// Parallelism is the number of intents generated concurrently.
	// Values < 2 mean sequential generation.
	Parallelism int
}

// Defaults for zero-valued [Params] fields.
const (
	DefaultNumExamples = 50
	DefaultAttempts    = 50
)

// withDefaults returns p with zero fields replaced by package defaults.
func (p Params) withDefaults() Params {
	if p.NumExamples < 1 {
		p.NumExamples = DefaultNumExamples
	}
	if p.Attempts < 1 {
		p.Attempts = DefaultAttempts
	}
	return p
}

// Ledger counts an intent's failed generation attempts, partitioned by cause.
// Exhausting the attempt budget is a normal, reportable outcome — the caller
// decides whether a short dataset is acceptable.
type Ledger struct {
	// MissingEntity counts draws where a template referenced an entity absent
	// from the gazetteer.
	MissingEntity int

	// Duplicate counts draws whose instantiated string was already present in
	// the intent's example set.
	Duplicate int
}

// Total returns the combined failure count.
func (l Ledger) Total() int { return l.MissingEntity + l.Duplicate }

// Ledgers maps an intent label to its failure ledger for one generation run.
type Ledgers map[string]Ledger

// Policy is a named generation strategy. Implementations must not mutate the
// gazetteer or template set.
type Policy interface {
	// Name identifies the policy in configuration and logs.
	Name() string

	// Generate produces the per-intent example lists and failure ledgers for
	// the given inputs.
	Generate(gaz gazetteer.Gazetteer, templates gazetteer.TemplateSet, p Params) (dataset.Dataset, Ledgers, error)
}

// ForName returns the policy registered under name ("combinatorial" or
// "random"), or an error listing the valid names.
func ForName(name string) (Policy, error) {
	switch name {
	case "combinatorial", "":
		return &CombinatorialPolicy{}, nil
	case "random":
		return &RandomPolicy{}, nil
	default:
		return nil, fmt.Errorf("augment: unknown policy %q; valid policies: combinatorial, random", name)
	}
}

// placeholders returns the unique placeholder names in template, in
// first-occurrence order.
func placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// perIntentResult carries one intent's generation output across goroutines.
type perIntentResult struct {
	examples []string
	ledger   Ledger
}

// eachIntent runs fn once per intent, sequentially or on up to parallelism
// goroutines, and collects the results into a dataset and ledgers.
func eachIntent(
	templates gazetteer.TemplateSet,
	parallelism int,
	fn func(label string, intentTemplates []string) perIntentResult,
) (dataset.Dataset, Ledgers) {
	ds := make(dataset.Dataset, len(templates))
	ledgers := make(Ledgers, len(templates))

	if parallelism < 2 {
		for label, tpls := range templates {
			res := fn(label, tpls)
			ds[label] = res.examples
			ledgers[label] = res.ledger
		}
		return ds, ledgers
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(parallelism)
	for label, tpls := range templates {
		g.Go(func() error {
			res := fn(label, tpls)
			mu.Lock()
			ds[label] = res.examples
			ledgers[label] = res.ledger
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only synchronises.
	_ = g.Wait()
	return ds, ledgers
}
