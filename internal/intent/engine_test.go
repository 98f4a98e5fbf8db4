package intent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aidekit/aide/internal/intent"
	"github.com/aidekit/aide/pkg/scorer"
	"github.com/aidekit/aide/pkg/scorer/mock"
)

func TestNew_NilScorer(t *testing.T) {
	t.Parallel()

	if _, err := intent.New(nil); err == nil {
		t.Fatal("expected error for nil scorer")
	}
}

func TestPredict_EmptyInputSkipsScoring(t *testing.T) {
	t.Parallel()

	s := &mock.Scorer{Result: scorer.Prediction{"greeting": 10}}
	e, err := intent.New(s)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, text := range []string{"", "   ", "\t\n"} {
		label, err := e.Predict(context.Background(), text)
		if err != nil {
			t.Fatalf("Predict(%q): %v", text, err)
		}
		if label != intent.Unknown {
			t.Errorf("Predict(%q) = %q, want unknown", text, label)
		}
	}
	if len(s.Calls) != 0 {
		t.Errorf("scorer must not be consulted for empty input, got %d calls", len(s.Calls))
	}
}

func TestPredict_NormalizesInput(t *testing.T) {
	t.Parallel()

	s := &mock.Scorer{Result: scorer.Prediction{"greeting": 10, "goodbye": 0.1}}
	e, err := intent.New(s)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := e.Predict(context.Background(), "  Hello There  "); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got := s.Calls[0].Text; got != "hello there" {
		t.Errorf("scored text = %q, want trimmed lower-case", got)
	}
}

func TestPredict_ConfidenceGate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		scores scorer.Prediction
		want   string
	}{
		{
			name:   "dominant label is confident",
			scores: scorer.Prediction{"greeting": 10, "goodbye": 0.01},
			want:   "greeting",
		},
		{
			name:   "flat distribution is unconfident",
			scores: scorer.Prediction{"greeting": 5, "goodbye": 5},
			want:   intent.Unknown,
		},
		{
			name:   "all zero scores are unconfident",
			scores: scorer.Prediction{"greeting": 0, "goodbye": 0},
			want:   intent.Unknown,
		},
		{
			name:   "tie on top score breaks lexicographically",
			scores: scorer.Prediction{"goodbye": 8, "greeting": 8, "weather": 0},
			want:   "goodbye",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, err := intent.New(&mock.Scorer{Result: tc.scores})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			label, err := e.Predict(context.Background(), "some utterance")
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			if label != tc.want {
				t.Errorf("Predict = %q, want %q", label, tc.want)
			}
		})
	}
}

func TestPredict_ThresholdBoundary(t *testing.T) {
	t.Parallel()

	// Two labels scoring 3 and 1 give mean 2, stddev 1, confidence 0.5 —
	// exactly the default threshold, which counts as confident.
	e, err := intent.New(&mock.Scorer{Result: scorer.Prediction{"greeting": 3, "goodbye": 1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	label, err := e.Predict(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if label != "greeting" {
		t.Errorf("Predict = %q, want greeting at exact threshold", label)
	}
}

func TestPredict_CustomThreshold(t *testing.T) {
	t.Parallel()

	e, err := intent.New(
		&mock.Scorer{Result: scorer.Prediction{"greeting": 3, "goodbye": 1}},
		intent.WithThreshold(0.9),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	label, err := e.Predict(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if label != intent.Unknown {
		t.Errorf("Predict = %q, want unknown below raised threshold", label)
	}
}

func TestPredict_ScorerErrorPropagates(t *testing.T) {
	t.Parallel()

	scoreErr := errors.New("backend down")
	e, err := intent.New(&mock.Scorer{Err: scoreErr})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.Predict(context.Background(), "hello"); !errors.Is(err, scoreErr) {
		t.Errorf("err = %v, want wrapped scorer error", err)
	}
}

func TestPredict_ValidationFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		scores scorer.Prediction
		opts   []intent.Option
	}{
		{
			name:   "empty prediction",
			scores: scorer.Prediction{},
		},
		{
			name:   "negative score",
			scores: scorer.Prediction{"greeting": -1},
		},
		{
			name:   "foreign label",
			scores: scorer.Prediction{"greeting": 5, "smalltalk": 1},
			opts:   []intent.Option{intent.WithLabels([]string{"greeting", "goodbye"})},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, err := intent.New(&mock.Scorer{Result: tc.scores}, tc.opts...)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if _, err := e.Predict(context.Background(), "hello"); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// recorderSpy captures RecordPrediction calls.
type recorderSpy struct {
	label      string
	confident  bool
	confidence float64
	calls      int
}

func (r *recorderSpy) RecordPrediction(_ context.Context, label string, confident bool, confidence float64) {
	r.label, r.confident, r.confidence = label, confident, confidence
	r.calls++
}

func TestPredict_RecordsOutcome(t *testing.T) {
	t.Parallel()

	spy := &recorderSpy{}
	e, err := intent.New(
		&mock.Scorer{Result: scorer.Prediction{"greeting": 10, "goodbye": 0.01}},
		intent.WithRecorder(spy),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.Predict(context.Background(), "hello"); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if spy.calls != 1 || spy.label != "greeting" || !spy.confident || spy.confidence <= 0 {
		t.Errorf("unexpected recording: %+v", spy)
	}
}
