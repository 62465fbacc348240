package ranking

import "github.com/okian/fplpredict/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeightsFromConfig overrides recommendation weights by key. Unknown
// keys are ignored.
func WithWeightsFromConfig(weights map[string]float64) Option {
	return func(e *Engine) {
		e.weights = e.weights.merge(weights)
	}
}

// WithSurpriseWeightsFromConfig overrides surprise weights by key.
func WithSurpriseWeightsFromConfig(weights map[string]float64) Option {
	return func(e *Engine) {
		e.surprise = e.surprise.merge(weights)
	}
}

// WithSurpriseCutoffs sets the ownership ceiling and form floor of the
// surprise pre-filter as given. A zero form floor admits any positive form.
func WithSurpriseCutoffs(maxOwnership, minForm float64) Option {
	return func(e *Engine) {
		e.ownershipCutoff = maxOwnership
		e.formCutoff = minForm
	}
}

// WithLogger sets the logger used for fixture fallback diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
