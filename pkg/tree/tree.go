// Package tree links one source's flat organization records into a rooted forest.
//
// Parent references that do not resolve are attached under a synthetic
// "<source>:unresolved" root and reported as warnings; cycles are fatal for the
// source and reported as *errors.CycleError.
package tree

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/org"
)

// UnresolvedSuffix is appended to the source id to name the synthetic orphan root.
const UnresolvedSuffix = ":unresolved"

// WarningKind classifies a recoverable ingestion problem.
type WarningKind string

const (
	// WarningUnresolvedParent marks a record whose parent id is not in the source.
	WarningUnresolvedParent WarningKind = "unresolved_parent"
	// WarningEmptyName marks a record with a blank display name.
	WarningEmptyName WarningKind = "empty_name"
)

// Warning is a recoverable problem found while building a tree.
type Warning struct {
	Source  string      `json:"source" yaml:"source"`
	LocalID string      `json:"local_id" yaml:"local_id"`
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Message string      `json:"message" yaml:"message"`
}

// String renders the warning on one line.
func (w Warning) String() string {
	return fmt.Sprintf("%s:%s %s: %s", w.Source, w.LocalID, w.Kind, w.Message)
}

// Node is one organization inside a source tree.
type Node struct {
	Record    org.Record
	Parent    *Node
	Children  []*Node
	Synthetic bool
}

// Key returns the node's global key.
func (n *Node) Key() org.Key {
	return n.Record.Key()
}

// Name returns the node's display name.
func (n *Node) Name() string {
	return n.Record.Name
}

// Depth returns the number of ancestors above the node.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Tree is the forest built from one source.
type Tree struct {
	source     string
	roots      []*Node
	nodes      map[string]*Node
	unresolved *Node
	warnings   []Warning
}

// Source returns the id of the source the tree was built from.
func (t *Tree) Source() string {
	return t.source
}

// Roots returns the top-level nodes. The synthetic unresolved root, if any, is last.
func (t *Tree) Roots() []*Node {
	return slices.Clone(t.roots)
}

// Node returns the node with the given local id.
func (t *Tree) Node(localID string) (*Node, bool) {
	n, ok := t.nodes[localID]
	return n, ok
}

// Unresolved returns the synthetic orphan root, or nil when every parent resolved.
func (t *Tree) Unresolved() *Node {
	return t.unresolved
}

// Len returns the number of ingested records, not counting the synthetic root.
func (t *Tree) Len() int {
	if t.unresolved != nil {
		return len(t.nodes) - 1
	}
	return len(t.nodes)
}

// Warnings returns the recoverable problems found during the build.
func (t *Tree) Warnings() []Warning {
	return slices.Clone(t.warnings)
}

// Walk visits every node in pre-order, roots and children in their sorted order.
func (t *Tree) Walk(fn func(*Node) error) error {
	var visit func(n *Node) error
	visit = func(n *Node) error {
		if err := fn(n); err != nil {
			return err
		}
		for _, c := range n.Children {
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range t.roots {
		if err := visit(r); err != nil {
			return err
		}
	}
	return nil
}

// Build links records from one source into a tree.
// Records with an empty SourceID inherit source.
func Build(source string, records []org.Record) (*Tree, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.NewIngestionError(source, "", "source id cannot be empty", nil)
	}
	if err := org.ValidateSourceID(source); err != nil {
		return nil, errors.NewIngestionError(source, "", "invalid source id", err)
	}

	t := &Tree{
		source: source,
		nodes:  make(map[string]*Node, len(records)),
	}

	for _, rec := range records {
		rec = rec.Clone()
		if rec.SourceID == "" {
			rec.SourceID = source
		}
		if rec.SourceID != source {
			return nil, errors.NewIngestionError(source, rec.LocalID,
				fmt.Sprintf("record belongs to source %q", rec.SourceID), nil)
		}
		if err := rec.Validate(); err != nil {
			return nil, errors.NewIngestionError(source, rec.LocalID, "invalid record", err)
		}
		if _, dup := t.nodes[rec.LocalID]; dup {
			return nil, errors.NewIngestionError(source, rec.LocalID, "duplicate local id", nil)
		}
		if strings.TrimSpace(rec.Name) == "" {
			t.warnings = append(t.warnings, Warning{
				Source:  source,
				LocalID: rec.LocalID,
				Kind:    WarningEmptyName,
				Message: "record has no display name and will never auto-match",
			})
		}
		t.nodes[rec.LocalID] = &Node{Record: rec}
	}

	if err := t.detectCycles(); err != nil {
		return nil, err
	}

	t.link()
	t.sort()
	return t, nil
}

// detectCycles walks every ancestor chain once using three-state marking.
func (t *Tree) detectCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)

	ids := make([]string, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	state := make(map[string]int, len(t.nodes))
	for _, start := range ids {
		var chain []string
		cur := start
		for {
			if state[cur] == done {
				break
			}
			if state[cur] == visiting {
				at := slices.Index(chain, cur)
				return errors.NewCycleError(t.source, append(chain[at:], cur))
			}
			state[cur] = visiting
			chain = append(chain, cur)

			parent := t.nodes[cur].Record.ParentID
			if parent == "" {
				break
			}
			if _, ok := t.nodes[parent]; !ok {
				break
			}
			cur = parent
		}
		for _, id := range chain {
			state[id] = done
		}
	}
	return nil
}

// link resolves parent references; unresolvable ones go under the synthetic root.
func (t *Tree) link() {
	ids := make([]string, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		n := t.nodes[id]
		parentID := n.Record.ParentID
		if parentID == "" {
			t.roots = append(t.roots, n)
			continue
		}
		if p, ok := t.nodes[parentID]; ok {
			n.Parent = p
			p.Children = append(p.Children, n)
			continue
		}

		orphans := t.unresolvedRoot()
		n.Parent = orphans
		orphans.Children = append(orphans.Children, n)
		t.warnings = append(t.warnings, Warning{
			Source:  t.source,
			LocalID: id,
			Kind:    WarningUnresolvedParent,
			Message: fmt.Sprintf("parent %q not found, attached under %s", parentID, orphans.Record.Name),
		})
	}
}

func (t *Tree) unresolvedRoot() *Node {
	if t.unresolved != nil {
		return t.unresolved
	}
	name := t.source + UnresolvedSuffix
	id := name
	for {
		if _, taken := t.nodes[id]; !taken {
			break
		}
		id += "~"
	}
	t.unresolved = &Node{
		Record:    org.Record{SourceID: t.source, LocalID: id, Name: name},
		Synthetic: true,
	}
	t.nodes[id] = t.unresolved
	return t.unresolved
}

// sort orders roots and children by case-folded name, then local id.
func (t *Tree) sort() {
	var real []*Node
	for _, r := range t.roots {
		if !r.Synthetic {
			real = append(real, r)
		}
	}
	sortNodes(real)
	if t.unresolved != nil {
		real = append(real, t.unresolved)
	}
	t.roots = real

	for _, n := range t.nodes {
		sortNodes(n.Children)
	}
}

// sortNodes orders siblings by case-folded name, then local id, the same
// order the merged forest uses.
func sortNodes(nodes []*Node) {
	fold := cases.Fold()
	slices.SortFunc(nodes, func(a, b *Node) int {
		if c := strings.Compare(fold.String(a.Record.Name), fold.String(b.Record.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Record.LocalID, b.Record.LocalID)
	})
}
