package orgmap

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/orgmap/pkg/forest"
	"github.com/agentstation/orgmap/pkg/matcher"
	"github.com/agentstation/orgmap/pkg/merge"
	"github.com/agentstation/orgmap/pkg/provenance"
	"github.com/agentstation/orgmap/pkg/tree"
)

// Result is the outcome of one run. Forest, Edges and Clusters are nil after
// Validate.
type Result struct {
	RunID    string
	Forest   *forest.Forest
	Trees    []*tree.Tree
	Edges    []matcher.Edge
	Clusters []merge.Cluster
	Report   *provenance.Report
	Stats    Stats

	StartTime time.Time
	Duration  time.Duration
}

// Stats are the run counters.
type Stats struct {
	Sources        int // sources ingested
	Excluded       int // sources dropped
	Records        int // real records across ingested sources
	Nodes          int // merged nodes, synthetic included
	MergedClusters int // nodes with more than one member
	CandidateEdges int
	AcceptedEdges  int
	Conflicts      int
	Warnings       int
}

func statsOf(r *Result) Stats {
	s := Stats{
		Sources:        len(r.Trees),
		CandidateEdges: len(r.Edges),
		AcceptedEdges:  len(matcher.Accepted(r.Edges)),
	}
	for _, t := range r.Trees {
		s.Records += t.Len()
	}
	if r.Forest != nil {
		s.Nodes = r.Forest.Len()
	}
	if r.Report != nil {
		s.Excluded = len(r.Report.Excluded)
		s.MergedClusters = len(r.Report.Clusters)
		s.Conflicts = len(r.Report.Conflicts)
		s.Warnings = len(r.Report.Warnings)
	}
	return s
}

// HasProblems reports whether any source was excluded or any warning raised.
func (r *Result) HasProblems() bool {
	return r.Stats.Excluded > 0 || r.Stats.Warnings > 0
}

// Summary returns a one-paragraph human-readable summary.
func (r *Result) Summary() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d records from %d sources", r.Stats.Records, r.Stats.Sources))
	if r.Forest != nil {
		parts = append(parts, fmt.Sprintf("merged into %d nodes (%d multi-source clusters, %d/%d edges accepted)",
			r.Stats.Nodes, r.Stats.MergedClusters, r.Stats.AcceptedEdges, r.Stats.CandidateEdges))
	}
	if r.Stats.Conflicts > 0 {
		parts = append(parts, fmt.Sprintf("%d parent conflicts", r.Stats.Conflicts))
	}
	if r.Stats.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", r.Stats.Warnings))
	}
	if r.Stats.Excluded > 0 {
		names := make([]string, 0, len(r.Report.Excluded))
		for _, e := range r.Report.Excluded {
			names = append(names, e.Source)
		}
		parts = append(parts, fmt.Sprintf("%d sources excluded (%s)", r.Stats.Excluded, strings.Join(names, ", ")))
	}
	return strings.Join(parts, ", ")
}
