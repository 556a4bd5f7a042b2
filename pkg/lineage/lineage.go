// Package lineage derives the root-to-node name path for every node of a source tree.
// Paths are the unit the matcher compares across sources.
package lineage

import (
	"slices"
	"strings"

	"github.com/agentstation/orgmap/pkg/org"
	"github.com/agentstation/orgmap/pkg/tree"
)

// Separator joins path segments in String.
const Separator = " > "

// Path is the ordered list of names from a tree root down to one node.
type Path struct {
	Key   org.Key  `json:"key" yaml:"key"`
	Names []string `json:"names" yaml:"names"`
}

// Leaf returns the node's own name.
func (p Path) Leaf() string {
	if len(p.Names) == 0 {
		return ""
	}
	return p.Names[len(p.Names)-1]
}

// Depth returns the number of segments.
func (p Path) Depth() int {
	return len(p.Names)
}

// Ancestors returns the segments above the leaf, root first.
func (p Path) Ancestors() []string {
	if len(p.Names) <= 1 {
		return nil
	}
	return slices.Clone(p.Names[:len(p.Names)-1])
}

// String renders the path as "Root > ... > Leaf".
func (p Path) String() string {
	return strings.Join(p.Names, Separator)
}

// Of returns the lineage path of n. Synthetic ancestors are skipped.
func Of(n *tree.Node) Path {
	var names []string
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Synthetic {
			continue
		}
		names = append(names, cur.Record.Name)
	}
	slices.Reverse(names)
	return Path{Key: n.Key(), Names: names}
}

// Derive returns a path for every real node in t, in pre-order.
func Derive(t *tree.Tree) []Path {
	paths := make([]Path, 0, t.Len())
	_ = t.Walk(func(n *tree.Node) error {
		if !n.Synthetic {
			paths = append(paths, Of(n))
		}
		return nil
	})
	return paths
}

// Index maps each path by its key.
func Index(paths []Path) map[org.Key]Path {
	idx := make(map[org.Key]Path, len(paths))
	for _, p := range paths {
		idx[p.Key] = p
	}
	return idx
}
