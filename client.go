// Package orgmap consolidates independently rooted organization hierarchies,
// one per source directory, into a single merged hierarchy.
//
// A merge run validates its configuration, ingests every selected source
// concurrently, builds one tree per source, matches lineage paths across every
// pair of sources and folds the accepted matches into a forest. A source that
// cannot be ingested is excluded from the run and reported; a bad configuration
// aborts the run before anything is read.
//
// Example usage:
//
//	client, err := orgmap.New(orgmap.WithConfig(cfg))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnSourceExcluded(func(e provenance.Excluded) {
//	    log.Printf("skipped %s: %s", e.Source, e.Error)
//	})
//
//	result, err := client.Merge(ctx, []sources.Source{usaspending, fedreg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
package orgmap

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/orgmap/pkg/config"
	"github.com/agentstation/orgmap/pkg/logging"
	"github.com/agentstation/orgmap/pkg/sources"
)

// Client runs merges.
type Client interface {
	// Merge runs the full pipeline over srcs.
	Merge(ctx context.Context, srcs []sources.Source) (*Result, error)

	// Validate checks the configuration and ingests every source without merging.
	Validate(ctx context.Context, srcs []sources.Source) (*Result, error)

	// Config returns a copy of the client configuration.
	Config() *config.Config

	// OnSourceExcluded registers a callback for sources dropped from a run.
	OnSourceExcluded(SourceExcludedHook)

	// OnWarning registers a callback for ingestion warnings.
	OnWarning(WarningHook)

	// OnConflict registers a callback for parent conflicts.
	OnConflict(ConflictHook)
}

// Compile-time interface check.
var _ Client = (*client)(nil)

type client struct {
	mu      sync.RWMutex
	options *options
	hooks   *hooks
}

// New creates a client. Options are applied over config.Default().
func New(opts ...Option) (Client, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &client{options: o, hooks: newHooks()}, nil
}

// Config returns a copy of the client configuration.
func (c *client) Config() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.options.config.Clone()
}

// logger returns the configured logger, or the context's.
func (c *client) logger(ctx context.Context) *zerolog.Logger {
	if c.options.logger != nil {
		return c.options.logger
	}
	return logging.FromContext(ctx)
}
