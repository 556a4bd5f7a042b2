package orgmap

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/orgmap/pkg/config"
	"github.com/agentstation/orgmap/pkg/errors"
)

type options struct {
	config  *config.Config
	logger  *zerolog.Logger
	timeout time.Duration
}

func defaultOptions() *options {
	return &options{config: config.Default()}
}

// Option is a function that configures a Client.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithConfig sets the run configuration. The config is copied; it is validated
// at merge time against the sources of that run.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.NewConfigError("config", nil, "cannot be nil")
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithLogger sets the logger. Without it the context logger is used.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = &logger
		return nil
	}
}

// WithTimeout bounds a whole merge run.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.NewConfigError("timeout", d, "cannot be negative")
		}
		o.timeout = d
		return nil
	}
}
