// Package config defines the merge run configuration and its validation.
//
// Validation failures are *errors.ConfigError and are fatal for the run: they
// are reported before any source is ingested.
package config

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/agentstation/orgmap/internal/pattern"
	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/matcher"
	"github.com/agentstation/orgmap/pkg/normalize"
)

// EnvPrefix prefixes environment overrides, e.g. ORGMAP_THRESHOLD.
const EnvPrefix = "ORGMAP"

// SourceSpec points at one record file.
type SourceSpec struct {
	ID     string `mapstructure:"id" yaml:"id" json:"id"`
	Path   string `mapstructure:"path" yaml:"path" json:"path"`
	Format string `mapstructure:"format" yaml:"format,omitempty" json:"format,omitempty"`
}

// Config is the complete run configuration.
type Config struct {
	Threshold       float64                 `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	Decay           float64                 `mapstructure:"decay" yaml:"decay" json:"decay"`
	Concurrency     int                     `mapstructure:"concurrency" yaml:"concurrency" json:"concurrency"`
	Priority        []string                `mapstructure:"priority" yaml:"priority,omitempty" json:"priority,omitempty"`
	Include         []string                `mapstructure:"include" yaml:"include,omitempty" json:"include,omitempty"`
	Exclude         []string                `mapstructure:"exclude" yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Abbreviations   normalize.Abbreviations `mapstructure:"abbreviations" yaml:"abbreviations,omitempty" json:"abbreviations,omitempty"`
	AttributeKeys   []string                `mapstructure:"attribute_keys" yaml:"attribute_keys,omitempty" json:"attribute_keys,omitempty"`
	AttributeWeight float64                 `mapstructure:"attribute_weight" yaml:"attribute_weight" json:"attribute_weight"`
	Sources         []SourceSpec            `mapstructure:"sources" yaml:"sources,omitempty" json:"sources,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Threshold:     matcher.DefaultThreshold,
		Decay:         matcher.DefaultDecay,
		Concurrency:   matcher.DefaultConcurrency,
		Abbreviations: normalize.DefaultAbbreviations(),
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Priority = slices.Clone(c.Priority)
	out.Include = slices.Clone(c.Include)
	out.Exclude = slices.Clone(c.Exclude)
	out.AttributeKeys = slices.Clone(c.AttributeKeys)
	out.Sources = slices.Clone(c.Sources)
	if c.Abbreviations != nil {
		out.Abbreviations = make(normalize.Abbreviations, len(c.Abbreviations))
		for k, v := range c.Abbreviations {
			out.Abbreviations[k] = v
		}
	}
	return &out
}

// Normalizer builds the normalizer for the configured abbreviation table.
func (c *Config) Normalizer() *normalize.Normalizer {
	return normalize.New(c.Abbreviations)
}

// Validate checks the configuration against the ids of the sources in the run.
func (c *Config) Validate(known []string) error {
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return errors.NewConfigError("threshold", c.Threshold, "must be within [0,1]")
	}
	if math.IsNaN(c.Decay) || c.Decay <= 0 || c.Decay > 1 {
		return errors.NewConfigError("decay", c.Decay, "must be within (0,1]")
	}
	if c.Concurrency < 0 {
		return errors.NewConfigError("concurrency", c.Concurrency, "cannot be negative")
	}
	if math.IsNaN(c.AttributeWeight) || c.AttributeWeight < 0 || c.AttributeWeight > 1 {
		return errors.NewConfigError("attribute_weight", c.AttributeWeight, "must be within [0,1]")
	}

	seen := make(map[string]bool, len(c.Priority))
	for _, id := range c.Priority {
		if seen[id] {
			return errors.NewConfigError("priority", id, "listed more than once")
		}
		seen[id] = true
		if !slices.Contains(known, id) {
			return errors.NewConfigError("priority", id, "unknown source")
		}
	}

	include, err := pattern.Compile(c.Include)
	if err != nil {
		return &errors.ConfigError{Field: "include", Value: c.Include, Message: err.Error(), Err: err}
	}
	exclude, err := pattern.Compile(c.Exclude)
	if err != nil {
		return &errors.ConfigError{Field: "exclude", Value: c.Exclude, Message: err.Error(), Err: err}
	}
	for _, p := range include {
		if len(pattern.Set{p}.Filter(known...)) == 0 {
			return errors.NewConfigError("include", p.String(), "matches no known source")
		}
	}
	for _, id := range known {
		if include.Match(id) && exclude.Match(id) {
			return errors.NewConfigError("include", id, "source is both included and excluded")
		}
	}

	for k, v := range c.Abbreviations {
		if n := len(normalize.BaseTokens(k)); n != 1 {
			return errors.NewConfigError("abbreviations", k, fmt.Sprintf("key must normalize to one token, got %d", n))
		}
		if len(normalize.BaseTokens(v)) == 0 {
			return errors.NewConfigError("abbreviations", k, "expansion is empty")
		}
	}

	for i, s := range c.Sources {
		if s.Path == "" {
			return errors.NewConfigError(fmt.Sprintf("sources[%d].path", i), s.Path, "cannot be empty")
		}
	}
	return nil
}

// Selects reports whether the source passes the include/exclude lists. An empty
// include list selects everything. Invalid patterns select nothing; Validate
// reports them.
func (c *Config) Selects(id string) bool {
	exclude, err := pattern.Compile(c.Exclude)
	if err != nil {
		return false
	}
	if exclude.Match(id) {
		return false
	}
	if len(c.Include) == 0 {
		return true
	}
	include, err := pattern.Compile(c.Include)
	if err != nil {
		return false
	}
	return include.Match(id)
}

// Load reads a config file (YAML, JSON or TOML by extension) over the
// defaults, then applies ORGMAP_ environment overrides. An empty path loads
// defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "yml" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, &errors.ConfigError{Field: "file", Value: path, Message: err.Error(), Err: err}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &errors.ConfigError{Field: "file", Value: path, Message: err.Error(), Err: err}
	}
	if cfg.Abbreviations == nil {
		cfg.Abbreviations = normalize.DefaultAbbreviations()
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("decay", d.Decay)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("attribute_weight", d.AttributeWeight)
	v.SetDefault("priority", []string{})
	v.SetDefault("include", []string{})
	v.SetDefault("exclude", []string{})
	v.SetDefault("attribute_keys", []string{})
}
