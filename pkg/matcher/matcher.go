// Package matcher finds likely-identical organizations across sources by
// comparing their lineage paths.
//
// Every node is compared with every node of every other source. For each node
// and each other source the best candidate is chosen (highest score, then
// closest depth, then smallest local id) and an edge is emitted for it. An edge
// is accepted only when the choice is mutual and the score reaches the
// threshold. The matcher never infers transitivity; that is the merge step's job.
package matcher

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/lineage"
	"github.com/agentstation/orgmap/pkg/logging"
	"github.com/agentstation/orgmap/pkg/org"
	"github.com/agentstation/orgmap/pkg/similarity"
	"github.com/agentstation/orgmap/pkg/tree"
)

// Edge is a scored candidate equivalence between nodes of two sources.
// A always sorts before B.
type Edge struct {
	A        org.Key `json:"a" yaml:"a"`
	B        org.Key `json:"b" yaml:"b"`
	Score    float64 `json:"score" yaml:"score"`
	Accepted bool    `json:"accepted" yaml:"accepted"`
}

// String renders the edge for logs and diffs.
func (e Edge) String() string {
	mark := " "
	if e.Accepted {
		mark = "*"
	}
	return fmt.Sprintf("%s %s ~ %s %.4f", mark, e.A, e.B, e.Score)
}

// Accepted returns the accepted edges, preserving order.
func Accepted(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.Accepted {
			out = append(out, e)
		}
	}
	return out
}

// SourcePaths are the lineage paths of one source. Attributes, keyed by local
// id, are only consulted when attribute keys are configured.
type SourcePaths struct {
	Source     string
	Paths      []lineage.Path
	Attributes map[string]map[string]any
}

// FromTree derives the paths and attributes of every real node in t.
func FromTree(t *tree.Tree) SourcePaths {
	sp := SourcePaths{
		Source:     t.Source(),
		Paths:      lineage.Derive(t),
		Attributes: make(map[string]map[string]any),
	}
	_ = t.Walk(func(n *tree.Node) error {
		if !n.Synthetic && len(n.Record.Attributes) > 0 {
			sp.Attributes[n.Record.LocalID] = n.Record.Attributes
		}
		return nil
	})
	return sp
}

// Matcher scores lineage paths. It is safe for concurrent use.
type Matcher struct {
	opts *options
}

// New creates a Matcher.
func New(opts ...Option) (*Matcher, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Matcher{opts: o}, nil
}

// Threshold returns the acceptance threshold.
func (m *Matcher) Threshold() float64 {
	return m.opts.threshold
}

// candidate is a path with its segments normalized once.
type candidate struct {
	key   org.Key
	segs  []string
	attrs map[string]any
}

func (m *Matcher) prepare(sp SourcePaths) []candidate {
	out := make([]candidate, 0, len(sp.Paths))
	for _, p := range sp.Paths {
		c := candidate{key: p.Key, segs: make([]string, len(p.Names))}
		for i, name := range p.Names {
			c.segs[i] = m.opts.normalizer.Normalize(name)
		}
		if sp.Attributes != nil {
			c.attrs = sp.Attributes[p.Key.ID]
		}
		out = append(out, c)
	}
	return out
}

// Score compares two paths without attribute blending.
func (m *Matcher) Score(a, b lineage.Path) float64 {
	pa := m.prepare(SourcePaths{Paths: []lineage.Path{a}})
	pb := m.prepare(SourcePaths{Paths: []lineage.Path{b}})
	return m.score(pa[0], pb[0])
}

// score is the weighted mean of leaf and right-aligned ancestor similarities.
// The segment i levels above the leaf weighs decay^i.
func (m *Matcher) score(a, b candidate) float64 {
	la, lb := len(a.segs), len(b.segs)
	if la == 0 || lb == 0 || a.segs[la-1] == "" || b.segs[lb-1] == "" {
		return 0
	}

	var sum, weights float64
	w := 1.0
	for i := 0; i < min(la, lb); i++ {
		sum += w * similarity.Score(a.segs[la-1-i], b.segs[lb-1-i])
		weights += w
		w *= m.opts.decay
	}
	s := sum / weights

	if frac, ok := m.attributeAgreement(a.attrs, b.attrs); ok {
		s = (1-m.opts.attributeWeight)*s + m.opts.attributeWeight*frac
	}
	return clamp(s)
}

// attributeAgreement is the fraction of configured keys present on both sides
// that carry equal values.
func (m *Matcher) attributeAgreement(a, b map[string]any) (float64, bool) {
	if len(m.opts.attributeKeys) == 0 || m.opts.attributeWeight == 0 || a == nil || b == nil {
		return 0, false
	}
	var shared, agree int
	for _, k := range m.opts.attributeKeys {
		va, okA := a[k]
		vb, okB := b[k]
		if !okA || !okB {
			continue
		}
		shared++
		if strings.EqualFold(strings.TrimSpace(fmt.Sprint(va)), strings.TrimSpace(fmt.Sprint(vb))) {
			agree++
		}
	}
	if shared == 0 {
		return 0, false
	}
	return float64(agree) / float64(shared), true
}

func clamp(s float64) float64 {
	switch {
	case math.IsNaN(s) || s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// Match compares every pair of sources and returns the sorted edge list.
func (m *Matcher) Match(ctx context.Context, sets []SourcePaths) ([]Edge, error) {
	sets = slices.Clone(sets)
	slices.SortFunc(sets, func(a, b SourcePaths) int { return strings.Compare(a.Source, b.Source) })
	for i := 1; i < len(sets); i++ {
		if sets[i].Source == sets[i-1].Source {
			return nil, errors.NewValidationError("sources", sets[i].Source, "duplicate source id")
		}
	}

	prepared := make([][]candidate, len(sets))
	for i, sp := range sets {
		prepared[i] = m.prepare(sp)
	}

	type pair struct{ i, j int }
	var pairs []pair
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	logger := logging.FromContext(ctx)
	results := make([][]Edge, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.concurrency)
	for idx, p := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[idx] = m.matchPair(prepared[p.i], prepared[p.j])
			logger.Debug().
				Str("left", sets[p.i].Source).
				Str("right", sets[p.j].Source).
				Int("edges", len(results[idx])).
				Int("accepted", len(Accepted(results[idx]))).
				Msg("compared source pair")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var edges []Edge
	for _, r := range results {
		edges = append(edges, r...)
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := a.A.Compare(b.A); c != 0 {
			return c
		}
		return a.B.Compare(b.B)
	})
	return edges, nil
}

// matchPair scores every left/right combination of two sources once and emits
// the best-candidate edges in both directions.
func (m *Matcher) matchPair(left, right []candidate) []Edge {
	if len(left) == 0 || len(right) == 0 {
		return nil
	}
	scores := make([][]float64, len(left))
	for i := range left {
		scores[i] = make([]float64, len(right))
		for j := range right {
			scores[i][j] = m.score(left[i], right[j])
		}
	}

	bestRight := make([]int, len(left))
	for i := range left {
		bestRight[i] = best(left[i], right, func(j int) float64 { return scores[i][j] })
	}
	bestLeft := make([]int, len(right))
	for j := range right {
		bestLeft[j] = best(right[j], left, func(i int) float64 { return scores[i][j] })
	}

	seen := make(map[[2]int]bool)
	var edges []Edge
	emit := func(i, j int) {
		if seen[[2]int{i, j}] || scores[i][j] <= 0 {
			return
		}
		seen[[2]int{i, j}] = true
		e := Edge{
			A:        left[i].key,
			B:        right[j].key,
			Score:    scores[i][j],
			Accepted: bestRight[i] == j && bestLeft[j] == i && scores[i][j] >= m.opts.threshold,
		}
		if e.B.Less(e.A) {
			e.A, e.B = e.B, e.A
		}
		edges = append(edges, e)
	}
	for i, j := range bestRight {
		emit(i, j)
	}
	for j, i := range bestLeft {
		emit(i, j)
	}
	return edges
}

// best picks the candidate with the highest score, then the depth closest to
// x, then the smallest local id.
func best(x candidate, cands []candidate, score func(int) float64) int {
	bi := 0
	for k := 1; k < len(cands); k++ {
		sk, sb := score(k), score(bi)
		switch {
		case sk > sb:
			bi = k
		case sk < sb:
		default:
			dk := absInt(len(cands[k].segs) - len(x.segs))
			db := absInt(len(cands[bi].segs) - len(x.segs))
			if dk < db || (dk == db && cands[k].key.ID < cands[bi].key.ID) {
				bi = k
			}
		}
	}
	return bi
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
