package merge

import (
	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/normalize"
)

type options struct {
	priority   []string
	normalizer *normalize.Normalizer
}

func defaultOptions() *options {
	return &options{normalizer: normalize.Default()}
}

// Option configures Build.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithPriority sets the source precedence order. Earlier sources win parent
// conflicts and name ties; sources not listed follow in alphabetical order.
func WithPriority(sourceIDs ...string) Option {
	return func(o *options) error {
		seen := make(map[string]bool, len(sourceIDs))
		for _, id := range sourceIDs {
			if id == "" {
				return errors.NewValidationError("priority", id, "source id cannot be empty")
			}
			if seen[id] {
				return errors.NewValidationError("priority", id, "duplicate source id")
			}
			seen[id] = true
		}
		o.priority = append([]string(nil), sourceIDs...)
		return nil
	}
}

// WithNormalizer sets the normalizer used to detect abbreviated names.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(o *options) error {
		if n == nil {
			return errors.NewValidationError("normalizer", nil, "cannot be nil")
		}
		o.normalizer = n
		return nil
	}
}
