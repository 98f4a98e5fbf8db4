// Package keyword implements an in-process bag-of-words intent scorer trained
// from a labeled example corpus.
//
// Scoring proceeds in two stages per utterance token:
//
//  1. Exact vocabulary hit: the token is looked up in each intent's token
//     frequency table and contributes its relative frequency to that intent.
//  2. Phonetic fallback: when a token hits no intent at all, Double Metaphone
//     codes narrow the vocabulary to sound-alike candidates and the best
//     Jaro-Winkler match above the phonetic threshold contributes a
//     similarity-weighted score. This absorbs transcription noise ("whether"
//     for "weather") without a remote model.
//
// The scorer is read-only after construction and safe for concurrent use.
package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/aidekit/aide/internal/dataset"
	"github.com/aidekit/aide/pkg/scorer"
)

const defaultPhoneticThreshold = 0.85

// Option is a functional option for configuring a [Scorer].
type Option func(*Scorer)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score for a
// phonetically-matched vocabulary token to contribute. Default: 0.85.
func WithPhoneticThreshold(threshold float64) Option {
	return func(s *Scorer) {
		s.phoneticThreshold = threshold
	}
}

// Scorer implements scorer.Scorer over per-intent token frequency tables.
type Scorer struct {
	// vocab maps intent label -> token -> relative frequency within the
	// intent's examples.
	vocab map[string]map[string]float64

	// codes maps a Double Metaphone code to the vocabulary tokens that
	// produce it, across all intents.
	codes map[string][]string

	phoneticThreshold float64
}

var _ scorer.Scorer = (*Scorer)(nil)

// Train builds a Scorer from a labeled dataset. Examples are lower-cased and
// whitespace-tokenised; each intent's token counts are normalised by the
// intent's total token count so verbose intents do not dominate.
//
// Returns an error when ds contains no examples.
func Train(ds dataset.Dataset, opts ...Option) (*Scorer, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("keyword: empty training dataset")
	}

	s := &Scorer{
		vocab:             make(map[string]map[string]float64, len(ds)),
		codes:             make(map[string][]string),
		phoneticThreshold: defaultPhoneticThreshold,
	}
	for _, o := range opts {
		o(s)
	}

	codeSeen := make(map[string]map[string]struct{})

	for label, examples := range ds {
		counts := make(map[string]float64)
		total := 0.0
		for _, ex := range examples {
			for _, tok := range strings.Fields(strings.ToLower(ex)) {
				counts[tok]++
				total++
			}
		}
		if total == 0 {
			continue
		}
		for tok := range counts {
			counts[tok] /= total
			s.indexCodes(tok, codeSeen)
		}
		s.vocab[label] = counts
	}

	if len(s.vocab) == 0 {
		return nil, fmt.Errorf("keyword: no usable examples in training dataset")
	}
	return s, nil
}

// Labels returns the trained intent labels in unspecified order.
func (s *Scorer) Labels() []string {
	labels := make([]string, 0, len(s.vocab))
	for l := range s.vocab {
		labels = append(labels, l)
	}
	return labels
}

// Score implements scorer.Scorer.
func (s *Scorer) Score(_ context.Context, text string) (scorer.Prediction, error) {
	pred := make(scorer.Prediction, len(s.vocab))
	for label := range s.vocab {
		pred[label] = 0
	}

	for _, tok := range strings.Fields(strings.ToLower(text)) {
		hit := false
		for label, counts := range s.vocab {
			if freq, ok := counts[tok]; ok {
				pred[label] += freq
				hit = true
			}
		}
		if hit {
			continue
		}
		if match, sim := s.phoneticMatch(tok); match != "" {
			for label, counts := range s.vocab {
				if freq, ok := counts[match]; ok {
					pred[label] += freq * sim
				}
			}
		}
	}

	return pred, nil
}

// indexCodes registers tok's Double Metaphone codes, deduplicating per code.
func (s *Scorer) indexCodes(tok string, seen map[string]map[string]struct{}) {
	p, sec := matchr.DoubleMetaphone(tok)
	for _, code := range []string{p, sec} {
		if code == "" {
			continue
		}
		if seen[code] == nil {
			seen[code] = make(map[string]struct{})
		}
		if _, dup := seen[code][tok]; dup {
			continue
		}
		seen[code][tok] = struct{}{}
		s.codes[code] = append(s.codes[code], tok)
	}
}

// phoneticMatch returns the vocabulary token most similar to tok among its
// Double Metaphone candidates, or "" when no candidate clears the threshold.
func (s *Scorer) phoneticMatch(tok string) (string, float64) {
	p, sec := matchr.DoubleMetaphone(tok)

	var (
		best    string
		bestSim float64
	)
	for _, code := range []string{p, sec} {
		if code == "" {
			continue
		}
		for _, candidate := range s.codes[code] {
			sim := matchr.JaroWinkler(tok, candidate, false)
			if sim < s.phoneticThreshold {
				continue
			}
			if sim > bestSim || (sim == bestSim && candidate < best) {
				best, bestSim = candidate, sim
			}
		}
	}
	return best, bestSim
}
