// Package gazetteer implements the [extract.Extractor] interface by matching
// utterance n-grams against labeled vocabulary lists.
//
// Matching proceeds in two stages per candidate n-gram:
//
//  1. Exact case-insensitive lookup against the vocabulary.
//  2. Phonetic fallback: Double Metaphone codes narrow the vocabulary to
//     sound-alike candidates, which are then ranked by Jaro-Winkler
//     similarity. The best candidate above the threshold wins, so "berlyn"
//     still resolves to "Berlin".
//
// Matched entities carry the canonical vocabulary form, not the surface
// spelling. Longer n-grams are tried first so "new york" beats "york".
package gazetteer

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/aidekit/aide/pkg/extract"
)

const (
	defaultFuzzyThreshold = 0.88
	maxNGram              = 3
)

// Option is a functional option for configuring an [Extractor].
type Option func(*Extractor)

// WithFuzzyThreshold sets the minimum Jaro-Winkler score for a phonetic
// candidate to be accepted. Default: 0.88.
func WithFuzzyThreshold(threshold float64) Option {
	return func(e *Extractor) {
		e.fuzzyThreshold = threshold
	}
}

// entry is one canonical vocabulary value with its label.
type entry struct {
	canonical string
	label     string
}

// Extractor matches utterances against labeled vocabularies. Read-only after
// construction and safe for concurrent use.
type Extractor struct {
	// exact maps the lower-cased vocabulary form to its entry.
	exact map[string]entry

	// codes maps a Double Metaphone code to the lower-cased forms that
	// produce it.
	codes map[string][]string

	fuzzyThreshold float64
}

var _ extract.Extractor = (*Extractor)(nil)

// New builds an Extractor from label → vocabulary lists, e.g.
//
//	New(map[string][]string{
//	    extract.LabelLocation: {"London", "New York", "Berlin"},
//	    extract.LabelDate:     {"today", "tomorrow", "tonight"},
//	})
//
// Values keep their given casing in extraction results; lookups are
// case-insensitive.
func New(vocab map[string][]string, opts ...Option) *Extractor {
	e := &Extractor{
		exact:          make(map[string]entry),
		codes:          make(map[string][]string),
		fuzzyThreshold: defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(e)
	}

	for label, values := range vocab {
		for _, v := range values {
			lower := strings.ToLower(strings.TrimSpace(v))
			if lower == "" {
				continue
			}
			if _, dup := e.exact[lower]; dup {
				continue
			}
			e.exact[lower] = entry{canonical: v, label: label}
			e.indexCodes(lower)
		}
	}
	return e
}

// Entities implements extract.Extractor. The utterance is scanned with
// n-grams from longest to shortest; each token contributes to at most one
// entity.
func (e *Extractor) Entities(text string) []extract.Entity {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return nil
	}

	var out []extract.Entity
	used := make([]bool, len(tokens))

	for n := maxNGram; n >= 1; n-- {
		for i := 0; i+n <= len(tokens); i++ {
			if anyUsed(used[i : i+n]) {
				continue
			}
			gram := strings.Join(tokens[i:i+n], " ")
			ent, ok := e.match(gram)
			if !ok {
				continue
			}
			out = append(out, extract.Entity{Text: ent.canonical, Label: ent.label})
			for j := i; j < i+n; j++ {
				used[j] = true
			}
		}
	}
	return out
}

// match resolves one n-gram, exact first, phonetic second.
func (e *Extractor) match(gram string) (entry, bool) {
	if ent, ok := e.exact[gram]; ok {
		return ent, true
	}

	p, s := matchr.DoubleMetaphone(gram)

	var (
		best    string
		bestSim float64
	)
	for _, code := range []string{p, s} {
		if code == "" {
			continue
		}
		for _, candidate := range e.codes[code] {
			sim := matchr.JaroWinkler(gram, candidate, false)
			if sim < e.fuzzyThreshold {
				continue
			}
			if best == "" || sim > bestSim || (sim == bestSim && candidate < best) {
				best, bestSim = candidate, sim
			}
		}
	}
	if best == "" {
		return entry{}, false
	}
	return e.exact[best], true
}

// indexCodes registers the Double Metaphone codes for one vocabulary form.
func (e *Extractor) indexCodes(lower string) {
	p, s := matchr.DoubleMetaphone(lower)
	for _, code := range []string{p, s} {
		if code == "" {
			continue
		}
		e.codes[code] = append(e.codes[code], lower)
	}
}

func anyUsed(window []bool) bool {
	for _, u := range window {
		if u {
			return true
		}
	}
	return false
}
