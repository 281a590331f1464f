package scoring

import (
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides per-constraint weights keyed by reason kind
// ("position", "grad_year", ...). Unknown kinds and negative values are ignored.
func WithWeights(weights map[string]float64) Option {
	return func(s *Scorer) {
		for kind, w := range weights {
			k := model.ReasonKind(kind)
			if _, known := s.weights[k]; known && w >= 0 {
				s.weights[k] = w
			}
		}
	}
}

// WithMaxReasons caps how many reasons a MatchResult surfaces.
func WithMaxReasons(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.maxReasons = n
		}
	}
}

// WithRecencyWindow sets the activity window, in days, used by the trending score.
func WithRecencyWindow(days int) Option {
	return func(s *Scorer) {
		if days > 0 {
			s.recencyDays = days
		}
	}
}
