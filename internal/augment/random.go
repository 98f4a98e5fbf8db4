package augment

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"

	"github.com/aidekit/aide/internal/dataset"
	"github.com/aidekit/aide/internal/gazetteer"
)

// RandomPolicy draws bounded random samples per intent instead of enumerating
// the full product space. Each draw picks a template uniformly at random,
// lower-cases it, and substitutes a uniformly random surface form into every
// placeholder token.
//
// Failure accounting: a placeholder whose entity is absent from the gazetteer
// tallies a missing-entity failure and the token is kept literally in the
// output (so the unfilled slot stays visible rather than producing a
// truncated utterance); a draw that reproduces an already-generated string
// tallies a duplicate failure. Generation for an intent stops when its
// example set reaches [Params.NumExamples] or its cumulative failures reach
// [Params.Attempts], whichever comes first. The policy itself never fails —
// an exhausted budget is reported through the ledger.
//
// Runs are reproducible for a fixed [Params.Seed]: each intent derives its
// own generator from the seed and its label, so results are stable under any
// [Params.Parallelism].
type RandomPolicy struct{}

// Name implements [Policy].
func (*RandomPolicy) Name() string { return "random" }

// Generate implements [Policy].
func (r *RandomPolicy) Generate(gaz gazetteer.Gazetteer, templates gazetteer.TemplateSet, p Params) (dataset.Dataset, Ledgers, error) {
	p = p.withDefaults()

	ds, ledgers := eachIntent(templates, p.Parallelism, func(label string, intentTemplates []string) perIntentResult {
		return r.generateIntent(gaz, label, intentTemplates, p)
	})
	return ds, ledgers, nil
}

// generateIntent runs the draw loop for a single intent.
func (r *RandomPolicy) generateIntent(gaz gazetteer.Gazetteer, label string, intentTemplates []string, p Params) perIntentResult {
	var res perIntentResult
	res.examples = []string{}
	if len(intentTemplates) == 0 {
		return res
	}

	rng := rand.New(rand.NewPCG(p.Seed, labelSeed(label)))
	seen := make(map[string]struct{}, p.NumExamples)

	for len(res.examples) < p.NumExamples && res.ledger.Total() < p.Attempts {
		tpl := intentTemplates[rng.IntN(len(intentTemplates))]
		utterance := r.instantiate(gaz, tpl, rng, &res.ledger)

		if _, ok := seen[utterance]; ok {
			res.ledger.Duplicate++
			continue
		}
		seen[utterance] = struct{}{}
		res.examples = append(res.examples, utterance)
	}

	return res
}

// instantiate lower-cases tpl, splits it into whitespace tokens, substitutes
// every token that is exactly a {name} placeholder, and re-joins with single
// spaces. Missing entities are tallied on ledger; their tokens pass through
// unchanged.
func (r *RandomPolicy) instantiate(gaz gazetteer.Gazetteer, tpl string, rng *rand.Rand, ledger *Ledger) string {
	tokens := strings.Fields(strings.ToLower(tpl))
	for i, tok := range tokens {
		name, ok := placeholderName(tok)
		if !ok {
			continue
		}
		// A present-but-empty entity offers nothing to draw from and is
		// treated like a missing one.
		values := gaz[name]
		if len(values) == 0 {
			ledger.MissingEntity++
			continue
		}
		tokens[i] = values[rng.IntN(len(values))]
	}
	return strings.Join(tokens, " ")
}

// placeholderName reports whether tok is exactly a {name} placeholder and
// returns the name. Tokens that merely contain a placeholder (e.g. trailing
// punctuation) are not substituted.
func placeholderName(tok string) (string, bool) {
	m := placeholderPattern.FindStringSubmatch(tok)
	if m == nil || m[0] != tok {
		return "", false
	}
	return m[1], true
}

// labelSeed derives a stable per-intent seed component from the label so that
// parallel and sequential runs generate identical per-intent streams.
func labelSeed(label string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(label))
	return h.Sum64()
}
