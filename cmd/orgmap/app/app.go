// Package app provides the application context and dependency management
// for the orgmap CLI. It centralizes configuration, logging and source
// loading so commands only see the application.Application interface.
package app

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/orgmap"
	"github.com/agentstation/orgmap/cmd/application"
	"github.com/agentstation/orgmap/internal/sources/files"
	"github.com/agentstation/orgmap/pkg/config"
	"github.com/agentstation/orgmap/pkg/constants"
	"github.com/agentstation/orgmap/pkg/sources"
)

// Compile-time interface check.
var _ application.Application = (*App)(nil)

// App represents the orgmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// CLI configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Merge configuration (lazy-loaded, cached)
	mu          sync.RWMutex
	mergeConfig *config.Config
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the CLI configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format flag value.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// MergeConfig loads the merge configuration on first use and returns a copy.
func (a *App) MergeConfig() (*config.Config, error) {
	a.mu.RLock()
	if a.mergeConfig != nil {
		cfg := a.mergeConfig.Clone()
		a.mu.RUnlock()
		return cfg, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.mergeConfig != nil {
		return a.mergeConfig.Clone(), nil
	}

	cfg, err := config.Load(a.config.ConfigFile)
	if err != nil {
		return nil, err
	}
	a.mergeConfig = cfg
	return cfg.Clone(), nil
}

// Client returns a new client configured from the merge configuration.
func (a *App) Client(opts ...orgmap.Option) (orgmap.Client, error) {
	cfg, err := a.MergeConfig()
	if err != nil {
		return nil, err
	}
	base := []orgmap.Option{
		orgmap.WithConfig(cfg),
		orgmap.WithLogger(*a.logger),
		orgmap.WithTimeout(constants.CommandTimeout),
	}
	return orgmap.New(append(base, opts...)...)
}

// Sources opens every source listed in the merge configuration, then one
// source per path. Path sources take their id from the file name.
func (a *App) Sources(paths ...string) ([]sources.Source, error) {
	cfg, err := a.MergeConfig()
	if err != nil {
		return nil, err
	}

	specs := slices.Clone(cfg.Sources)
	for _, p := range paths {
		specs = append(specs, config.SourceSpec{Path: p})
	}

	out := make([]sources.Source, 0, len(specs))
	for _, spec := range specs {
		src, err := files.Open(spec)
		if err != nil {
			return nil, err
		}
		a.logger.Debug().Str("source", src.ID()).Str("path", src.Path()).Str("format", src.Format()).Msg("Opened source")
		out = append(out, src)
	}
	return out, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom CLI configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithMergeConfig sets the merge configuration instead of loading it (useful for testing).
func WithMergeConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.mergeConfig = cfg.Clone()
		return nil
	}
}
