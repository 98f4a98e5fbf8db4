// Package dataset defines the labeled training corpus produced by the
// augmentation pipeline and its delimited-text serialization.
package dataset

import (
	"slices"
	"sort"
)

// Example is a single labeled training utterance.
type Example struct {
	Phrase string
	Intent string
}

// Dataset maps an intent label to its ordered, duplicate-free example
// utterances. The per-intent order is whatever the generating policy
// produced; serialization iterates intents in sorted key order so output is
// stable regardless of map iteration.
type Dataset map[string][]string

// Intents returns the dataset's intent labels in sorted order.
func (d Dataset) Intents() []string {
	labels := make([]string, 0, len(d))
	for label := range d {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Len returns the total number of examples across all intents.
func (d Dataset) Len() int {
	n := 0
	for _, examples := range d {
		n += len(examples)
	}
	return n
}

// Examples flattens the dataset into (phrase, intent) pairs, intents in
// sorted order, examples in stored order.
func (d Dataset) Examples() []Example {
	out := make([]Example, 0, d.Len())
	for _, label := range d.Intents() {
		for _, phrase := range d[label] {
			out = append(out, Example{Phrase: phrase, Intent: label})
		}
	}
	return out
}

// Equal reports whether d and other hold the same examples per intent, in the
// same order.
func (d Dataset) Equal(other Dataset) bool {
	if len(d) != len(other) {
		return false
	}
	for label, examples := range d {
		if !slices.Equal(examples, other[label]) {
			return false
		}
	}
	return true
}
