package orgmap

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/orgmap/pkg/config"
	"github.com/agentstation/orgmap/pkg/logging"
	"github.com/agentstation/orgmap/pkg/matcher"
	"github.com/agentstation/orgmap/pkg/merge"
	"github.com/agentstation/orgmap/pkg/normalize"
	"github.com/agentstation/orgmap/pkg/provenance"
	"github.com/agentstation/orgmap/pkg/similarity"
	"github.com/agentstation/orgmap/pkg/sources"
	"github.com/agentstation/orgmap/pkg/tree"
)

// run holds the state shared by Merge and Validate.
type run struct {
	id       string
	started  time.Time
	cfg      *config.Config
	trees    []*tree.Tree
	excluded []provenance.Excluded
	cancel   context.CancelFunc
}

// prepare validates the configuration and ingests the selected sources.
func (c *client) prepare(ctx context.Context, srcs []sources.Source) (context.Context, *run, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}
	r := &run{id: uuid.NewString(), started: time.Now(), cfg: c.Config(), cancel: func() {}}
	if c.options.timeout > 0 {
		ctx, r.cancel = context.WithTimeout(ctx, c.options.timeout)
	}
	ctx = logging.WithLogger(ctx, c.logger(ctx))
	ctx = logging.WithRun(ctx, r.id)

	// Step 1: Duplicate ids and invalid configuration are fatal
	set, err := sources.New(srcs...)
	if err != nil {
		r.cancel()
		return nil, nil, err
	}
	if err := r.cfg.Validate(set.IDs()); err != nil {
		r.cancel()
		return nil, nil, err
	}

	// Step 2: Apply include/exclude
	selected := set.Filter(r.cfg.Selects)
	logging.FromContext(ctx).Info().
		Int("sources", set.Len()).
		Int("selected", len(selected)).
		Msg("Starting run")

	// Step 3: Ingest concurrently, isolating failures
	r.trees, r.excluded, err = ingest(ctx, selected, r.cfg.Concurrency)
	if err != nil {
		r.cancel()
		return nil, nil, err
	}
	return ctx, r, nil
}

// Merge runs the full pipeline over srcs.
func (c *client) Merge(ctx context.Context, srcs []sources.Source) (*Result, error) {
	ctx, r, err := c.prepare(ctx, srcs)
	if err != nil {
		return nil, err
	}
	defer r.cancel()
	normalizer := r.cfg.Normalizer()

	// Step 4: Match lineage paths across every source pair
	m, err := matcher.New(
		matcher.WithThreshold(r.cfg.Threshold),
		matcher.WithDecay(r.cfg.Decay),
		matcher.WithConcurrency(r.cfg.Concurrency),
		matcher.WithNormalizer(normalizer),
		matcher.WithAttributeKeys(r.cfg.AttributeWeight, r.cfg.AttributeKeys...),
	)
	if err != nil {
		return nil, err
	}
	sets := make([]matcher.SourcePaths, 0, len(r.trees))
	for _, t := range r.trees {
		sets = append(sets, matcher.FromTree(t))
	}
	edges, err := m.Match(logging.WithOperation(ctx, "match"), sets)
	if err != nil {
		return nil, err
	}

	// Step 5: Merge along accepted edges
	merged, err := merge.Build(logging.WithOperation(ctx, "merge"),
		merge.Input{Trees: r.trees, Edges: edges},
		merge.WithPriority(r.cfg.Priority...),
		merge.WithNormalizer(normalizer),
	)
	if err != nil {
		return nil, err
	}

	// Step 6: Complete the report
	warnings := warningsOf(r.trees)
	report := merged.Report
	report.RunID = r.id
	report.Algorithm = algorithm(r.cfg)
	report.Excluded = r.excluded
	report.Warnings = reportWarnings(warnings)
	report.Sort()

	c.hooks.trigger(r.excluded, warnings, report.Conflicts)

	res := &Result{
		RunID:     r.id,
		Forest:    merged.Forest,
		Trees:     r.trees,
		Edges:     edges,
		Clusters:  merged.Clusters,
		Report:    report,
		StartTime: r.started,
		Duration:  time.Since(r.started),
	}
	res.Stats = statsOf(res)

	logging.FromContext(ctx).Info().
		Int("nodes", res.Stats.Nodes).
		Int("merged_clusters", res.Stats.MergedClusters).
		Int("excluded", res.Stats.Excluded).
		Dur("duration", res.Duration).
		Msg("Run complete")
	return res, nil
}

// Validate ingests every selected source and reports problems without merging.
func (c *client) Validate(ctx context.Context, srcs []sources.Source) (*Result, error) {
	_, r, err := c.prepare(ctx, srcs)
	if err != nil {
		return nil, err
	}
	defer r.cancel()

	warnings := warningsOf(r.trees)
	report := &provenance.Report{
		RunID:     r.id,
		Algorithm: algorithm(r.cfg),
		Excluded:  r.excluded,
		Warnings:  reportWarnings(warnings),
	}
	report.Sort()
	c.hooks.trigger(r.excluded, warnings, nil)

	res := &Result{
		RunID:     r.id,
		Trees:     r.trees,
		Report:    report,
		StartTime: r.started,
		Duration:  time.Since(r.started),
	}
	res.Stats = statsOf(res)
	return res, nil
}

func algorithm(cfg *config.Config) provenance.Algorithm {
	return provenance.Algorithm{
		Normalize:  normalize.Version,
		Similarity: similarity.Version,
		Threshold:  cfg.Threshold,
		Decay:      cfg.Decay,
		Priority:   cfg.Priority,
	}
}
