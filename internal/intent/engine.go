// Package intent turns raw utterances into intent labels.
//
// The Engine delegates scoring to a [scorer.Scorer] and gates the top label
// behind a confidence threshold: the coefficient of variation of the score
// distribution must reach the threshold, otherwise the utterance is labeled
// [Unknown]. Empty input short-circuits to [Unknown] without scoring.
package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aidekit/aide/pkg/scorer"
)

// Unknown is the reserved label for utterances the engine will not commit to.
// It is never produced by a scorer; the engine assigns it.
const Unknown = "unknown"

// DefaultThreshold is the confidence threshold applied when none is
// configured.
const DefaultThreshold = 0.5

// Recorder receives the outcome of every scored prediction. Implemented by
// the observe metrics layer; a nil recorder disables recording.
type Recorder interface {
	RecordPrediction(ctx context.Context, label string, confident bool, confidence float64)
}

// Option is a functional option for configuring an [Engine].
type Option func(*Engine)

// WithThreshold sets the confidence threshold. Default: 0.5.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithLabels restricts predictions to the given label set: a scorer returning
// any other label is treated as faulty and Predict fails. Without this
// option, any labels are accepted.
func WithLabels(labels []string) Option {
	return func(e *Engine) {
		e.labels = make(map[string]struct{}, len(labels))
		for _, l := range labels {
			e.labels[l] = struct{}{}
		}
	}
}

// WithRecorder attaches a prediction outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// Engine is the confidence-gated intent decision layer. Safe for concurrent
// use; the threshold may be adjusted at runtime via [Engine.SetThreshold],
// everything else is read-only after construction.
type Engine struct {
	scorer   scorer.Scorer
	labels   map[string]struct{}
	recorder Recorder

	mu        sync.RWMutex
	threshold float64
}

// New creates an Engine over s. A nil scorer is a wiring fault and fails
// immediately rather than degrading at prediction time.
func New(s scorer.Scorer, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, errors.New("intent: scorer must not be nil")
	}
	e := &Engine{scorer: s, threshold: DefaultThreshold}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Threshold returns the current confidence threshold.
func (e *Engine) Threshold() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threshold
}

// SetThreshold replaces the confidence threshold. Used for config hot-reload;
// negative values are ignored.
func (e *Engine) SetThreshold(threshold float64) {
	if threshold < 0 {
		return
	}
	e.mu.Lock()
	e.threshold = threshold
	e.mu.Unlock()
}

// Predict classifies text. Empty or whitespace-only input returns [Unknown]
// without consulting the scorer. Otherwise the trimmed, lower-cased text is
// scored, the prediction validated, and the top-scoring label returned when
// the confidence reaches the threshold — [Unknown] when it does not.
//
// Scorer failures and invalid predictions are returned as errors; the caller
// decides whether to degrade to [Unknown].
func (e *Engine) Predict(ctx context.Context, text string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Unknown, nil
	}

	pred, err := e.scorer.Score(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("intent: score: %w", err)
	}
	if err := e.validate(pred); err != nil {
		return "", err
	}

	top, topScore, _ := pred.Top()
	conf := confidence(pred)
	confident := conf >= e.Threshold()

	label := top
	if !confident {
		label = Unknown
	}

	slog.Debug("intent: prediction",
		"text", normalized,
		"top", top,
		"top_score", topScore,
		"confidence", conf,
		"label", label,
	)
	if e.recorder != nil {
		e.recorder.RecordPrediction(ctx, label, confident, conf)
	}
	return label, nil
}

// validate rejects predictions an honest scorer cannot produce.
func (e *Engine) validate(pred scorer.Prediction) error {
	if len(pred) == 0 {
		return errors.New("intent: scorer returned an empty prediction")
	}
	for label, score := range pred {
		if score < 0 {
			return fmt.Errorf("intent: negative score %v for label %q", score, label)
		}
		if e.labels != nil {
			if _, ok := e.labels[label]; !ok {
				return fmt.Errorf("intent: scorer returned unexpected label %q", label)
			}
		}
	}
	return nil
}
