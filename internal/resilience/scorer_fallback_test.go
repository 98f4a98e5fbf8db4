package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aidekit/aide/pkg/scorer"
	"github.com/aidekit/aide/pkg/scorer/mock"
)

func TestScorerFallback_PrimaryServes(t *testing.T) {
	primary := &mock.Scorer{Result: scorer.Prediction{"greeting": 1}}
	secondary := &mock.Scorer{Result: scorer.Prediction{"goodbye": 1}}

	f := NewScorerFallback(primary, "llm", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	f.AddFallback("keyword", secondary)

	pred, err := f.Score(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if pred["greeting"] != 1 {
		t.Fatalf("pred = %v, want primary's prediction", pred)
	}
	if len(secondary.Calls) != 0 {
		t.Errorf("secondary called %d times, want 0", len(secondary.Calls))
	}
}

func TestScorerFallback_FailsOverToSecondary(t *testing.T) {
	primary := &mock.Scorer{Err: errors.New("backend unavailable")}
	secondary := &mock.Scorer{Result: scorer.Prediction{"greeting": 1}}

	f := NewScorerFallback(primary, "llm", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	f.AddFallback("keyword", secondary)

	pred, err := f.Score(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if pred["greeting"] != 1 {
		t.Fatalf("pred = %v, want secondary's prediction", pred)
	}
	if len(primary.Calls) != 1 || len(secondary.Calls) != 1 {
		t.Errorf("calls: primary=%d secondary=%d, want 1 each", len(primary.Calls), len(secondary.Calls))
	}
}

func TestScorerFallback_OpenBreakerSkipsPrimary(t *testing.T) {
	primary := &mock.Scorer{Err: errors.New("backend unavailable")}
	secondary := &mock.Scorer{Result: scorer.Prediction{"greeting": 1}}

	f := NewScorerFallback(primary, "llm", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour},
	})
	f.AddFallback("keyword", secondary)

	for i := 0; i < 2; i++ {
		if _, err := f.Score(context.Background(), "hello"); err != nil {
			t.Fatalf("Score %d: %v", i, err)
		}
	}

	primary.Reset()
	if _, err := f.Score(context.Background(), "hello"); err != nil {
		t.Fatalf("Score after breaker opened: %v", err)
	}
	if len(primary.Calls) != 0 {
		t.Errorf("primary called %d times with open breaker, want 0", len(primary.Calls))
	}
}

func TestScorerFallback_AllFail(t *testing.T) {
	primary := &mock.Scorer{Err: errors.New("backend unavailable")}

	f := NewScorerFallback(primary, "llm", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})

	_, err := f.Score(context.Background(), "hello")
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}
