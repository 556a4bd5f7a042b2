package forest

import (
	"maps"
	"slices"

	"github.com/agentstation/orgmap/pkg/org"
)

// ResolutionKind tags how a node's merged parent was decided.
type ResolutionKind string

const (
	// Root means no member named a parent.
	Root ResolutionKind = "root"
	// Resolved means every member that named a parent agreed.
	Resolved ResolutionKind = "resolved"
	// Conflicted means members disagreed and one candidate was chosen.
	Conflicted ResolutionKind = "conflicted"
)

// Conflict reasons.
const (
	ReasonPriority = "priority"
	ReasonCycle    = "cycle"
)

// Resolution records the parent decision of a merged node.
// Parent is empty for Root. Candidates and Alternatives are only set for
// Conflicted; Alternatives are the candidates that were not chosen.
type Resolution struct {
	Kind         ResolutionKind `json:"kind" yaml:"kind"`
	Parent       string         `json:"parent,omitempty" yaml:"parent,omitempty"`
	Candidates   []string       `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Alternatives []string       `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Reason       string         `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// RootResolution returns a Root resolution.
func RootResolution() Resolution {
	return Resolution{Kind: Root}
}

// ResolvedTo returns a Resolved resolution with the given parent.
func ResolvedTo(parent string) Resolution {
	return Resolution{Kind: Resolved, Parent: parent}
}

// ConflictedTo returns a Conflicted resolution. chosen may be empty when every
// candidate was rejected and the node became a root.
func ConflictedTo(candidates []string, chosen, reason string) Resolution {
	alts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c != chosen {
			alts = append(alts, c)
		}
	}
	return Resolution{
		Kind:         Conflicted,
		Parent:       chosen,
		Candidates:   slices.Clone(candidates),
		Alternatives: alts,
		Reason:       reason,
	}
}

func (r Resolution) clone() Resolution {
	r.Candidates = slices.Clone(r.Candidates)
	r.Alternatives = slices.Clone(r.Alternatives)
	return r
}

// Node is one merged organization: a cluster of source records.
// Nodes are immutable once their Forest is built.
type Node struct {
	id         string
	name       string
	members    []org.Key
	attrs      map[string]map[string]any
	synthetic  bool
	parent     *Node
	children   []*Node
	resolution Resolution
}

// ID returns the representative member's key string.
func (n *Node) ID() string { return n.id }

// CanonicalName returns the chosen display name.
func (n *Node) CanonicalName() string { return n.name }

// Members returns the cluster members in priority order.
func (n *Node) Members() []org.Key { return slices.Clone(n.members) }

// Synthetic reports whether the node stands for a source's unresolved bucket.
func (n *Node) Synthetic() bool { return n.synthetic }

// Parent returns the merged parent, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the ordered children.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Resolution returns how the parent was decided.
func (n *Node) Resolution() Resolution { return n.resolution.clone() }

// Attributes returns a copy of attr -> source -> value.
func (n *Node) Attributes() map[string]map[string]any {
	out := make(map[string]map[string]any, len(n.attrs))
	for k, bySource := range n.attrs {
		out[k] = maps.Clone(bySource)
	}
	return out
}

// Sources returns the distinct member sources in member order.
func (n *Node) Sources() []string {
	var out []string
	for _, m := range n.members {
		if !slices.Contains(out, m.Source) {
			out = append(out, m.Source)
		}
	}
	return out
}

// Path returns the canonical names from the root down to n.
func (n *Node) Path() []string {
	var names []string
	for cur := n; cur != nil; cur = cur.parent {
		names = append(names, cur.name)
	}
	slices.Reverse(names)
	return names
}

// Depth returns the number of ancestors.
func (n *Node) Depth() int {
	d := 0
	for cur := n.parent; cur != nil; cur = cur.parent {
		d++
	}
	return d
}
