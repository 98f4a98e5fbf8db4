// Package scorer defines the Scorer interface for intent scoring backends.
//
// A scorer maps a normalized utterance to a per-label score distribution
// ([Prediction]). Scores are relative strengths on an arbitrary non-negative
// scale; the decision layer turns them into an accept/reject call, so a
// backend only has to be consistent with itself, not calibrated against other
// backends.
//
// Implementations must be safe for concurrent use.
package scorer

import "context"

// Prediction maps an intent label to its non-negative score. A higher score
// means the backend considers the label a better fit for the utterance.
type Prediction map[string]float64

// Top returns the label with the highest score. Ties break by lexicographic
// label order so repeated calls over the same prediction are deterministic.
// ok is false for an empty prediction.
func (p Prediction) Top() (label string, score float64, ok bool) {
	for l, s := range p {
		if !ok || s > score || (s == score && l < label) {
			label, score, ok = l, s, true
		}
	}
	return label, score, ok
}

// Scorer is the abstraction over any intent scoring backend.
//
// Score computes the label distribution for a single utterance. The text is
// already trimmed and lower-cased by the caller. Implementations must return
// a non-empty prediction or an error, and must propagate ctx cancellation
// promptly for backends that perform I/O.
type Scorer interface {
	Score(ctx context.Context, text string) (Prediction, error)
}
