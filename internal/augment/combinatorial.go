package augment

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aidekit/aide/internal/dataset"
	"github.com/aidekit/aide/internal/gazetteer"
)

// CombinatorialPolicy expands every template into the full Cartesian product
// of its entity slots. The expansion is fully deterministic: templates are
// processed in order, product tuples in odometer order (rightmost slot
// varying fastest), and each intent's deduplicated output is truncated at
// [Params.NumExamples] in that same order.
//
// A template referencing an entity absent from the gazetteer contributes no
// examples (logged, non-fatal). The run fails with [ErrNoExamples] only when
// the entire dataset comes out empty.
type CombinatorialPolicy struct{}

// Name implements [Policy].
func (*CombinatorialPolicy) Name() string { return "combinatorial" }

// Generate implements [Policy]. The returned ledgers tally missing-entity
// skips per intent; duplicates are silently collapsed (deduplication is not a
// failure under this policy, there is no attempt budget to spend).
func (c *CombinatorialPolicy) Generate(gaz gazetteer.Gazetteer, templates gazetteer.TemplateSet, p Params) (dataset.Dataset, Ledgers, error) {
	p = p.withDefaults()

	ds, ledgers := eachIntent(templates, p.Parallelism, func(label string, intentTemplates []string) perIntentResult {
		return c.generateIntent(gaz, label, intentTemplates, p.NumExamples)
	})

	if ds.Len() == 0 {
		return nil, ledgers, fmt.Errorf("%w: %d intents, 0 examples", ErrNoExamples, len(templates))
	}
	return ds, ledgers, nil
}

// generateIntent expands all of one intent's templates, deduplicating and
// truncating at numExamples.
func (c *CombinatorialPolicy) generateIntent(gaz gazetteer.Gazetteer, label string, intentTemplates []string, numExamples int) perIntentResult {
	var (
		res  perIntentResult
		seen = make(map[string]struct{})
	)
	res.examples = []string{}

	add := func(candidate string) bool {
		if _, ok := seen[candidate]; ok {
			return len(res.examples) < numExamples
		}
		seen[candidate] = struct{}{}
		res.examples = append(res.examples, candidate)
		return len(res.examples) < numExamples
	}

templates:
	for _, tpl := range intentTemplates {
		names := placeholders(tpl)
		if len(names) == 0 {
			if !add(tpl) {
				break
			}
			continue
		}

		lists := make([][]string, len(names))
		for i, name := range names {
			values, ok := gaz[name]
			if !ok {
				slog.Info("augment: template references unknown entity, skipping",
					"intent", label,
					"template", tpl,
					"entity", name,
				)
				res.ledger.MissingEntity++
				continue templates
			}
			lists[i] = values
		}

		for combo := range product(lists) {
			candidate := substitute(tpl, names, combo)
			if !add(candidate) {
				break templates
			}
		}
	}

	return res
}

// substitute replaces every {name} occurrence with the corresponding value.
func substitute(template string, names, values []string) string {
	out := template
	for i, name := range names {
		out = strings.ReplaceAll(out, "{"+name+"}", values[i])
	}
	return out
}

// product yields every tuple of the Cartesian product of lists in odometer
// order: the last list varies fastest. The yielded slice is reused between
// iterations; consumers must not retain it.
func product(lists [][]string) func(yield func([]string) bool) {
	return func(yield func([]string) bool) {
		for _, l := range lists {
			if len(l) == 0 {
				return
			}
		}

		idx := make([]int, len(lists))
		combo := make([]string, len(lists))
		for {
			for i, l := range lists {
				combo[i] = l[idx[i]]
			}
			if !yield(combo) {
				return
			}

			// Advance the odometer.
			pos := len(idx) - 1
			for pos >= 0 {
				idx[pos]++
				if idx[pos] < len(lists[pos]) {
					break
				}
				idx[pos] = 0
				pos--
			}
			if pos < 0 {
				return
			}
		}
	}
}
