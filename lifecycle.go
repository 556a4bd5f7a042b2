package orgmap

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/orgmap/pkg/logging"
	"github.com/agentstation/orgmap/pkg/provenance"
	"github.com/agentstation/orgmap/pkg/sources"
	"github.com/agentstation/orgmap/pkg/tree"
)

// ingested is the outcome of reading one source.
type ingested struct {
	tree     *tree.Tree
	excluded *provenance.Excluded
}

// ingest reads and builds every source concurrently. A failing source is
// excluded; only cancellation fails the call.
func ingest(ctx context.Context, srcs []sources.Source, limit int) ([]*tree.Tree, []provenance.Excluded, error) {
	results := make([]ingested, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, src := range srcs {
		g.Go(func() error {
			sctx := logging.WithSource(gctx, src.ID())
			logger := logging.FromContext(sctx)

			records, err := src.Records(sctx)
			if err == nil {
				var t *tree.Tree
				if t, err = tree.Build(src.ID(), records); err == nil {
					logger.Info().Int("records", t.Len()).Int("warnings", len(t.Warnings())).Msg("Ingested source")
					for _, w := range t.Warnings() {
						logger.Warn().Str("local_id", w.LocalID).Str("kind", string(w.Kind)).Msg(w.Message)
					}
					results[i] = ingested{tree: t}
					return nil
				}
			}
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn().Err(err).Msg("Source excluded from run")
			results[i] = ingested{excluded: &provenance.Excluded{Source: src.ID(), Error: err.Error()}}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		trees    []*tree.Tree
		excluded []provenance.Excluded
	)
	for _, r := range results {
		switch {
		case r.tree != nil:
			trees = append(trees, r.tree)
		case r.excluded != nil:
			excluded = append(excluded, *r.excluded)
		}
	}
	slices.SortFunc(trees, func(a, b *tree.Tree) int { return strings.Compare(a.Source(), b.Source()) })
	slices.SortFunc(excluded, func(a, b provenance.Excluded) int { return strings.Compare(a.Source, b.Source) })
	return trees, excluded, nil
}

// warningsOf collects tree warnings in source order.
func warningsOf(trees []*tree.Tree) []tree.Warning {
	var out []tree.Warning
	for _, t := range trees {
		out = append(out, t.Warnings()...)
	}
	return out
}

func reportWarnings(ws []tree.Warning) []provenance.Warning {
	out := make([]provenance.Warning, 0, len(ws))
	for _, w := range ws {
		out = append(out, provenance.Warning{Source: w.Source, LocalID: w.LocalID, Kind: string(w.Kind), Message: w.Message})
	}
	return out
}
