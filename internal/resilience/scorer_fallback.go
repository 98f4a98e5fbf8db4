package resilience

import (
	"context"

	"github.com/aidekit/aide/pkg/scorer"
)

// ScorerFallback implements [scorer.Scorer] with automatic failover across
// multiple scorer backends. Each backend has its own circuit breaker; when the
// primary fails or its breaker is open, the next healthy fallback is tried.
// The usual arrangement is a remote scorer (llm, semantic) backed by the local
// keyword scorer.
type ScorerFallback struct {
	group *FallbackGroup[scorer.Scorer]
}

var _ scorer.Scorer = (*ScorerFallback)(nil)

// NewScorerFallback creates a [ScorerFallback] with primary as the preferred
// backend.
func NewScorerFallback(primary scorer.Scorer, primaryName string, cfg FallbackConfig) *ScorerFallback {
	return &ScorerFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional scorer as a fallback.
func (f *ScorerFallback) AddFallback(name string, s scorer.Scorer) {
	f.group.AddFallback(name, s)
}

// Score asks the first healthy backend for a prediction. If the primary
// fails, subsequent fallbacks are tried in registration order.
func (f *ScorerFallback) Score(ctx context.Context, text string) (scorer.Prediction, error) {
	return ExecuteWithResult(f.group, func(s scorer.Scorer) (scorer.Prediction, error) {
		return s.Score(ctx, text)
	})
}

// Close releases every backend that holds resources. Backends without a Close
// method are skipped.
func (f *ScorerFallback) Close() {
	f.group.Each(func(_ string, s scorer.Scorer) {
		if closer, ok := s.(interface{ Close() }); ok {
			closer.Close()
		}
	})
}
