// Package mock provides a test double for the scorer.Scorer interface.
//
// Use Scorer to return pre-canned predictions without a trained model and to
// verify which utterances were scored.
//
// Example:
//
//	s := &mock.Scorer{
//	    Result: scorer.Prediction{"greeting": 9, "goodbye": 0.1},
//	}
//	pred, _ := s.Score(ctx, "hello")
package mock

import (
	"context"
	"sync"

	"github.com/aidekit/aide/pkg/scorer"
)

// Call records a single invocation of Score.
type Call struct {
	// Ctx is the context passed to Score.
	Ctx context.Context
	// Text is the utterance passed to Score.
	Text string
}

// Scorer is a mock implementation of scorer.Scorer.
type Scorer struct {
	mu sync.Mutex

	// Result is returned by Score. If nil and ResultFunc is nil, an empty
	// prediction is returned.
	Result scorer.Prediction

	// ResultFunc, if non-nil, computes the prediction per call and takes
	// precedence over Result.
	ResultFunc func(text string) scorer.Prediction

	// Err, if non-nil, is returned as the error from Score.
	Err error

	// Calls records every call to Score in order.
	Calls []Call
}

var _ scorer.Scorer = (*Scorer)(nil)

// Score records the call and returns the configured prediction and error.
func (s *Scorer) Score(ctx context.Context, text string) (scorer.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, Call{Ctx: ctx, Text: text})
	if s.Err != nil {
		return nil, s.Err
	}
	if s.ResultFunc != nil {
		return s.ResultFunc(text), nil
	}
	if s.Result != nil {
		return s.Result, nil
	}
	return scorer.Prediction{}, nil
}

// Reset clears all recorded calls. Thread-safe.
func (s *Scorer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = nil
}
