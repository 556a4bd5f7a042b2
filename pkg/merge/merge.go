// Package merge folds per-source trees into one forest using the accepted
// match edges.
//
// Accepted edges are closed transitively with a union-find, so every source
// record ends up in exactly one merged node. Names, attributes and parents are
// then decided per cluster using the source priority order.
package merge

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/orgmap/internal/unionfind"
	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/forest"
	"github.com/agentstation/orgmap/pkg/logging"
	"github.com/agentstation/orgmap/pkg/matcher"
	"github.com/agentstation/orgmap/pkg/org"
	"github.com/agentstation/orgmap/pkg/provenance"
	"github.com/agentstation/orgmap/pkg/tree"
)

// Structural attributes recorded on merged nodes. They live under
// org.ReservedAttributePrefix, which source records may not use.
const (
	AttrParentConflict    = org.ReservedAttributePrefix + "parent_conflict"
	AttrSameSourceMembers = org.ReservedAttributePrefix + "same_source_members"
)

// Input is what the merge consumes.
type Input struct {
	Trees []*tree.Tree
	Edges []matcher.Edge
}

// Cluster is the membership of one merged node.
type Cluster struct {
	ID      string    `json:"id" yaml:"id"`
	Members []org.Key `json:"members" yaml:"members"`
}

// Result is the merge output.
type Result struct {
	Forest   *forest.Forest
	Clusters []Cluster
	Report   *provenance.Report
}

// cluster is the working state for one merged node.
type cluster struct {
	id      string
	members []*tree.Node
	labels  []string
	name    string
}

type builder struct {
	opts      *options
	nodes     map[org.Key]*tree.Node
	rank      map[string]int
	clusters  []*cluster
	clusterOf map[org.Key]*cluster
	report    *provenance.Report
}

// Build merges the trees in in.Trees along the accepted edges in in.Edges.
func Build(ctx context.Context, in Input, opts ...Option) (*Result, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &builder{
		opts:      o,
		nodes:     make(map[org.Key]*tree.Node),
		rank:      make(map[string]int, len(o.priority)),
		clusterOf: make(map[org.Key]*cluster),
		report:    &provenance.Report{},
	}
	for i, id := range o.priority {
		b.rank[id] = i
	}

	uf, err := b.index(in)
	if err != nil {
		return nil, err
	}
	b.cluster(uf)
	b.nameClusters()

	fb := forest.NewBuilder()
	for _, c := range b.clusters {
		if err := fb.Add(b.spec(c)); err != nil {
			return nil, err
		}
	}
	if err := b.resolveParents(fb); err != nil {
		return nil, err
	}

	res := &Result{
		Forest:   fb.Build(),
		Clusters: make([]Cluster, 0, len(b.clusters)),
		Report:   b.report,
	}
	for _, c := range b.clusters {
		keys := make([]org.Key, len(c.members))
		for i, m := range c.members {
			keys[i] = m.Key()
		}
		res.Clusters = append(res.Clusters, Cluster{ID: c.id, Members: keys})
	}
	b.report.Sort()

	logging.FromContext(ctx).Info().
		Int("records", len(b.nodes)).
		Int("nodes", res.Forest.Len()).
		Int("merged_clusters", len(b.report.Clusters)).
		Int("conflicts", len(b.report.Conflicts)).
		Msg("merge complete")

	return res, nil
}

// index registers every node and unions the accepted edges.
func (b *builder) index(in Input) (*unionfind.Set[org.Key], error) {
	uf := unionfind.New[org.Key]()
	seen := make(map[string]bool, len(in.Trees))
	for _, t := range in.Trees {
		if t == nil {
			return nil, errors.NewValidationError("trees", nil, "nil tree")
		}
		if seen[t.Source()] {
			return nil, errors.NewValidationError("trees", t.Source(), "duplicate source id")
		}
		seen[t.Source()] = true
		_ = t.Walk(func(n *tree.Node) error {
			b.nodes[n.Key()] = n
			uf.Add(n.Key())
			return nil
		})
	}

	for _, e := range in.Edges {
		for _, k := range []org.Key{e.A, e.B} {
			n, ok := b.nodes[k]
			if !ok {
				return nil, errors.NewValidationError("edges", k.String(), "edge references unknown node")
			}
			if n.Synthetic && e.Accepted {
				return nil, errors.NewValidationError("edges", k.String(), "synthetic nodes cannot be matched")
			}
		}
		if e.Accepted {
			uf.Union(e.A, e.B)
		}
	}
	return uf, nil
}

// compareKeys orders members by source priority, then source id, then local id.
func (b *builder) compareKeys(x, y org.Key) int {
	return cmp.Or(
		cmp.Compare(b.rankOf(x.Source), b.rankOf(y.Source)),
		strings.Compare(x.Source, y.Source),
		strings.Compare(x.ID, y.ID),
	)
}

func (b *builder) rankOf(source string) int {
	if r, ok := b.rank[source]; ok {
		return r
	}
	return len(b.rank)
}

func (b *builder) cluster(uf *unionfind.Set[org.Key]) {
	for _, group := range uf.Groups(b.compareKeys) {
		c := &cluster{id: group[0].String()}
		perSource := make(map[string]int)
		for _, k := range group {
			n := b.nodes[k]
			c.members = append(c.members, n)
			label := k.Source
			if perSource[k.Source] > 0 {
				label = k.Source + "#" + k.ID
			}
			perSource[k.Source]++
			c.labels = append(c.labels, label)
			b.clusterOf[k] = c
		}
		b.clusters = append(b.clusters, c)
	}
}

// nameClusters picks canonical names: unabbreviated names first, then the
// longest, then member order.
func (b *builder) nameClusters() {
	for _, c := range b.clusters {
		var full []string
		all := make([]string, 0, len(c.members))
		for _, m := range c.members {
			name := strings.TrimSpace(m.Name())
			all = append(all, name)
			if !b.opts.normalizer.IsAbbreviated(name) {
				full = append(full, name)
			}
		}
		candidates := full
		if len(candidates) == 0 {
			candidates = all
		}
		best := candidates[0]
		for _, name := range candidates[1:] {
			if utf8.RuneCountInString(name) > utf8.RuneCountInString(best) {
				best = name
			}
		}
		c.name = best

		if len(c.members) > 1 {
			pc := provenance.Cluster{ID: c.id, CanonicalName: c.name}
			for _, m := range c.members {
				pc.Members = append(pc.Members, provenance.Member{
					Source:  m.Record.SourceID,
					LocalID: m.Record.LocalID,
					Name:    m.Name(),
				})
			}
			b.report.Clusters = append(b.report.Clusters, pc)
		}
	}
}

func (b *builder) spec(c *cluster) forest.NodeSpec {
	s := forest.NodeSpec{
		ID:            c.id,
		CanonicalName: c.name,
		Attributes:    make(map[string]map[string]any),
		Synthetic:     len(c.members) == 1 && c.members[0].Synthetic,
	}
	perSource := make(map[string][]string)
	for i, m := range c.members {
		s.Members = append(s.Members, m.Key())
		perSource[m.Record.SourceID] = append(perSource[m.Record.SourceID], m.Record.LocalID)
		for attr, v := range m.Record.Attributes {
			if s.Attributes[attr] == nil {
				s.Attributes[attr] = make(map[string]any)
			}
			s.Attributes[attr][c.labels[i]] = v
		}
	}
	for source, ids := range perSource {
		if len(ids) < 2 {
			continue
		}
		if s.Attributes[AttrSameSourceMembers] == nil {
			s.Attributes[AttrSameSourceMembers] = make(map[string]any)
		}
		s.Attributes[AttrSameSourceMembers][source] = strings.Join(ids, ",")
	}
	return s
}

// candidate is a parent cluster claimed by at least one member.
type candidate struct {
	cluster *cluster
	claims  map[string]string // member label -> parent name in that source
}

// parentCandidates returns the distinct parent clusters in member order.
// Synthetic parents are only kept when no member names a real parent.
func (b *builder) parentCandidates(c *cluster) []*candidate {
	var real, synthetic []*candidate
	byID := make(map[string]*candidate)
	for i, m := range c.members {
		if m.Parent == nil {
			continue
		}
		pc := b.clusterOf[m.Parent.Key()]
		if pc == c {
			continue
		}
		cand, ok := byID[pc.id]
		if !ok {
			cand = &candidate{cluster: pc, claims: make(map[string]string)}
			byID[pc.id] = cand
			if m.Parent.Synthetic {
				synthetic = append(synthetic, cand)
			} else {
				real = append(real, cand)
			}
		}
		cand.claims[c.labels[i]] = m.Parent.Name()
	}
	if len(real) > 0 {
		return real
	}
	return synthetic
}

// resolveParents links clusters in cluster order, skipping candidates that
// would close a cycle in the merged graph.
func (b *builder) resolveParents(fb *forest.Builder) error {
	for _, c := range b.clusters {
		cands := b.parentCandidates(c)
		if len(cands) == 0 {
			if err := fb.Link(c.id, forest.RootResolution()); err != nil {
				return err
			}
			continue
		}

		ids := make([]string, len(cands))
		for i, cand := range cands {
			ids[i] = cand.cluster.id
		}
		chosen, skipped := "", false
		for _, id := range ids {
			if fb.WouldCycle(c.id, id) {
				skipped = true
				continue
			}
			chosen = id
			break
		}

		var res forest.Resolution
		switch {
		case len(ids) == 1 && !skipped:
			res = forest.ResolvedTo(chosen)
		case skipped:
			res = forest.ConflictedTo(ids, chosen, forest.ReasonCycle)
		default:
			res = forest.ConflictedTo(ids, chosen, forest.ReasonPriority)
		}
		if err := fb.Link(c.id, res); err != nil {
			return err
		}
		if res.Kind != forest.Conflicted {
			continue
		}
		if err := fb.Annotate(c.id, AttrParentConflict, parentConflictAttributes(cands)); err != nil {
			return err
		}

		b.report.Conflicts = append(b.report.Conflicts, provenance.Conflict{
			NodeID:       c.id,
			Kind:         provenance.KindParent,
			Candidates:   res.Candidates,
			Chosen:       res.Parent,
			Alternatives: res.Alternatives,
			Reason:       res.Reason,
		})
	}
	return nil
}

// parentConflictAttributes renders per-member parent claims.
func parentConflictAttributes(cands []*candidate) map[string]any {
	out := make(map[string]any)
	for _, cand := range cands {
		for label, name := range cand.claims {
			out[label] = fmt.Sprintf("%s (%s)", name, cand.cluster.id)
		}
	}
	return out
}
