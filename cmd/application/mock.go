package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/orgmap"
	"github.com/agentstation/orgmap/pkg/config"
	"github.com/agentstation/orgmap/pkg/sources"
)

// Compile-time interface check.
var _ Application = (*Mock)(nil)

// Mock is an Application for command tests. Nil funcs fall back to defaults:
// config.Default(), a client built from it, no sources and a Nop logger.
type Mock struct {
	MergeConfigFunc func() (*config.Config, error)
	SourcesFunc     func(paths ...string) ([]sources.Source, error)
	LoggerFunc      func() *zerolog.Logger
	Format          string
	VersionString   string
}

// MergeConfig implements Application.
func (m *Mock) MergeConfig() (*config.Config, error) {
	if m.MergeConfigFunc != nil {
		return m.MergeConfigFunc()
	}
	return config.Default(), nil
}

// Client implements Application.
func (m *Mock) Client(opts ...orgmap.Option) (orgmap.Client, error) {
	cfg, err := m.MergeConfig()
	if err != nil {
		return nil, err
	}
	base := []orgmap.Option{orgmap.WithConfig(cfg), orgmap.WithLogger(*m.Logger())}
	return orgmap.New(append(base, opts...)...)
}

// Sources implements Application.
func (m *Mock) Sources(paths ...string) ([]sources.Source, error) {
	if m.SourcesFunc != nil {
		return m.SourcesFunc(paths...)
	}
	return nil, nil
}

// Logger implements Application.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat implements Application.
func (m *Mock) OutputFormat() string { return m.Format }

// Version implements Application.
func (m *Mock) Version() string {
	if m.VersionString == "" {
		return "dev"
	}
	return m.VersionString
}

// Commit implements Application.
func (m *Mock) Commit() string { return "unknown" }

// Date implements Application.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy implements Application.
func (m *Mock) BuiltBy() string { return "test" }
