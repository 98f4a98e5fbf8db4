package intent

import (
	"math"

	"github.com/aidekit/aide/pkg/scorer"
)

// confidence computes the coefficient of variation (population standard
// deviation over mean) of the prediction's scores. A flat distribution —
// every label equally plausible — yields a value near zero; a single
// dominant label pushes it up.
//
// All-zero scores have an undefined mean ratio and map to 0, which the
// engine treats as maximally unconfident.
func confidence(p scorer.Prediction) float64 {
	if len(p) == 0 {
		return 0
	}

	var sum float64
	for _, s := range p {
		sum += s
	}
	mean := sum / float64(len(p))
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, s := range p {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(p))

	return math.Sqrt(variance) / mean
}
