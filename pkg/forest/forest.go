// Package forest holds the merged organization hierarchy and the traversal
// export adapters consume.
package forest

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	pkgerrors "github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/org"
)

// SkipChildren returned from a WalkFunc prunes the current subtree.
var SkipChildren = errors.New("skip children")

// ColumnSeparator joins attribute and source in flattened column names.
const ColumnSeparator = "__"

// Forest is an immutable merged hierarchy.
type Forest struct {
	roots []*Node
	byID  map[string]*Node
	byKey map[org.Key]*Node
}

// Roots returns the ordered root nodes.
func (f *Forest) Roots() []*Node { return slices.Clone(f.roots) }

// Len returns the number of merged nodes.
func (f *Forest) Len() int { return len(f.byID) }

// Node returns the merged node with the given ID.
func (f *Forest) Node(id string) (*Node, bool) {
	n, ok := f.byID[id]
	return n, ok
}

// Lookup returns the merged node a source record ended up in.
func (f *Forest) Lookup(k org.Key) (*Node, bool) {
	n, ok := f.byKey[k]
	return n, ok
}

// Entry is what Walk hands to the callback for each node.
type Entry struct {
	Node       *Node
	Path       []string
	Name       string
	Attributes map[string]any
	Children   []string
	Depth      int
}

// WalkFunc is called for every node in depth-first pre-order.
type WalkFunc func(Entry) error

// Walk visits every node depth-first, roots and children in order.
func (f *Forest) Walk(fn WalkFunc) error {
	var visit func(n *Node, path []string) error
	visit = func(n *Node, path []string) error {
		path = append(slices.Clip(path), n.name)
		children := make([]string, len(n.children))
		for i, c := range n.children {
			children[i] = c.id
		}
		err := fn(Entry{
			Node:       n,
			Path:       slices.Clone(path),
			Name:       n.name,
			Attributes: Flatten(n.attrs),
			Children:   children,
			Depth:      len(path) - 1,
		})
		if errors.Is(err, SkipChildren) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, c := range n.children {
			if err := visit(c, path); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range f.roots {
		if err := visit(r, nil); err != nil {
			return err
		}
	}
	return nil
}

// Flatten turns attr -> source -> value into attr__source columns.
func Flatten(attrs map[string]map[string]any) map[string]any {
	out := make(map[string]any)
	for attr, bySource := range attrs {
		for source, v := range bySource {
			out[attr+ColumnSeparator+source] = v
		}
	}
	return out
}

// Columns returns the sorted flattened attribute columns used anywhere in f.
func (f *Forest) Columns() []string {
	set := make(map[string]struct{})
	for _, n := range f.byID {
		for col := range Flatten(n.attrs) {
			set[col] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// NodeSpec describes a merged node before it is linked.
type NodeSpec struct {
	ID            string
	CanonicalName string
	Members       []org.Key
	Attributes    map[string]map[string]any
	Synthetic     bool
}

// Builder assembles a Forest. It is not safe for concurrent use.
type Builder struct {
	nodes map[string]*Node
	keys  map[org.Key]*Node
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[string]*Node), keys: make(map[org.Key]*Node)}
}

// Add registers a node. IDs and member keys must be unique.
func (b *Builder) Add(spec NodeSpec) error {
	if spec.ID == "" {
		return pkgerrors.NewValidationError("id", spec.ID, "cannot be empty")
	}
	if _, ok := b.nodes[spec.ID]; ok {
		return pkgerrors.NewValidationError("id", spec.ID, "duplicate node id")
	}
	n := &Node{
		id:         spec.ID,
		name:       spec.CanonicalName,
		members:    slices.Clone(spec.Members),
		attrs:      make(map[string]map[string]any, len(spec.Attributes)),
		synthetic:  spec.Synthetic,
		resolution: RootResolution(),
	}
	for k, v := range spec.Attributes {
		n.attrs[k] = maps.Clone(v)
	}
	for _, m := range n.members {
		if other, ok := b.keys[m]; ok {
			return pkgerrors.NewValidationError("members", m.String(), "already a member of "+other.id)
		}
	}
	for _, m := range n.members {
		b.keys[m] = n
	}
	b.nodes[spec.ID] = n
	return nil
}

// WouldCycle reports whether linking child under parent closes a loop.
func (b *Builder) WouldCycle(child, parent string) bool {
	for cur := b.nodes[parent]; cur != nil; cur = cur.parent {
		if cur.id == child {
			return true
		}
	}
	return false
}

// Link sets child's parent and resolution. A Root resolution leaves the node
// unlinked.
func (b *Builder) Link(child string, res Resolution) error {
	c, ok := b.nodes[child]
	if !ok {
		return pkgerrors.NewNotFoundError("node", child)
	}
	if c.parent != nil {
		return pkgerrors.NewValidationError("parent", child, "already linked")
	}
	if res.Parent == "" {
		c.resolution = res.clone()
		return nil
	}
	p, ok := b.nodes[res.Parent]
	if !ok {
		return pkgerrors.NewNotFoundError("node", res.Parent)
	}
	if b.WouldCycle(child, res.Parent) {
		return pkgerrors.NewValidationError("parent", res.Parent, "linking "+child+" would create a cycle")
	}
	c.resolution = res.clone()
	c.parent = p
	p.children = append(p.children, c)
	return nil
}

// Annotate sets attr on a node before the forest is built. An attr the node
// already carries is never replaced.
func (b *Builder) Annotate(id, attr string, bySource map[string]any) error {
	n, ok := b.nodes[id]
	if !ok {
		return pkgerrors.NewNotFoundError("node", id)
	}
	if _, exists := n.attrs[attr]; exists {
		return pkgerrors.NewValidationError("attributes", attr, "already set on "+id)
	}
	n.attrs[attr] = maps.Clone(bySource)
	return nil
}

// Build orders roots and children by case-folded name, then ID, and returns
// the finished Forest. Synthetic roots sort after real ones. The Builder must
// not be used afterwards.
func (b *Builder) Build() *Forest {
	fold := cases.Fold()
	less := func(x, y *Node) int {
		if c := strings.Compare(fold.String(x.name), fold.String(y.name)); c != 0 {
			return c
		}
		return strings.Compare(x.id, y.id)
	}

	f := &Forest{byID: b.nodes, byKey: b.keys}
	for _, n := range b.nodes {
		slices.SortFunc(n.children, less)
		if n.parent == nil {
			f.roots = append(f.roots, n)
		}
	}
	slices.SortFunc(f.roots, func(x, y *Node) int {
		if x.synthetic != y.synthetic {
			if x.synthetic {
				return 1
			}
			return -1
		}
		return less(x, y)
	})
	return f
}
