package matcher

import (
	"math"

	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/normalize"
)

// Defaults.
const (
	DefaultThreshold   = 0.95
	DefaultDecay       = 0.5
	DefaultConcurrency = 4
)

type options struct {
	threshold       float64
	decay           float64
	concurrency     int
	normalizer      *normalize.Normalizer
	attributeKeys   []string
	attributeWeight float64
}

func defaultOptions() *options {
	return &options{
		threshold:   DefaultThreshold,
		decay:       DefaultDecay,
		concurrency: DefaultConcurrency,
		normalizer:  normalize.Default(),
	}
}

// Option configures a Matcher.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithThreshold sets the minimum score for an accepted edge.
func WithThreshold(threshold float64) Option {
	return func(o *options) error {
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return errors.NewValidationError("threshold", threshold, "must be within [0,1]")
		}
		o.threshold = threshold
		return nil
	}
}

// WithDecay sets the weight ratio between consecutive ancestor levels.
func WithDecay(decay float64) Option {
	return func(o *options) error {
		if math.IsNaN(decay) || decay <= 0 || decay > 1 {
			return errors.NewValidationError("decay", decay, "must be within (0,1]")
		}
		o.decay = decay
		return nil
	}
}

// WithConcurrency bounds the number of source pairs compared at once.
// Zero keeps the default.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return errors.NewValidationError("concurrency", n, "cannot be negative")
		}
		if n > 0 {
			o.concurrency = n
		}
		return nil
	}
}

// WithNormalizer replaces the default name normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(o *options) error {
		if n == nil {
			return errors.NewValidationError("normalizer", nil, "cannot be nil")
		}
		o.normalizer = n
		return nil
	}
}

// WithAttributeKeys blends agreement on the given attribute keys into the
// score with the given weight.
func WithAttributeKeys(weight float64, keys ...string) Option {
	return func(o *options) error {
		if math.IsNaN(weight) || weight < 0 || weight > 1 {
			return errors.NewValidationError("attribute_weight", weight, "must be within [0,1]")
		}
		o.attributeWeight = weight
		o.attributeKeys = append([]string(nil), keys...)
		return nil
	}
}
