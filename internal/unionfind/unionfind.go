// Package unionfind is a disjoint-set forest with path compression and union by rank.
package unionfind

import "slices"

// Set partitions keys into disjoint groups. The zero value is not usable; call New.
type Set[K comparable] struct {
	parent map[K]K
	rank   map[K]int
}

// New creates an empty Set.
func New[K comparable]() *Set[K] {
	return &Set[K]{parent: make(map[K]K), rank: make(map[K]int)}
}

// Add inserts k as a singleton. Adding an existing key is a no-op.
func (s *Set[K]) Add(k K) {
	if _, ok := s.parent[k]; !ok {
		s.parent[k] = k
	}
}

// Has reports whether k was added.
func (s *Set[K]) Has(k K) bool {
	_, ok := s.parent[k]
	return ok
}

// Len returns the number of keys.
func (s *Set[K]) Len() int {
	return len(s.parent)
}

// Find returns the root of k's group, adding k if needed.
func (s *Set[K]) Find(k K) K {
	s.Add(k)
	root := k
	for s.parent[root] != root {
		root = s.parent[root]
	}
	for k != root {
		next := s.parent[k]
		s.parent[k] = root
		k = next
	}
	return root
}

// Union merges the groups of a and b and reports whether they were distinct.
func (s *Set[K]) Union(a, b K) bool {
	ra, rb := s.Find(a), s.Find(b)
	if ra == rb {
		return false
	}
	switch {
	case s.rank[ra] < s.rank[rb]:
		s.parent[ra] = rb
	case s.rank[ra] > s.rank[rb]:
		s.parent[rb] = ra
	default:
		s.parent[rb] = ra
		s.rank[ra]++
	}
	return true
}

// Same reports whether a and b are in the same group.
func (s *Set[K]) Same(a, b K) bool {
	return s.Find(a) == s.Find(b)
}

// Groups returns every group sorted by cmp, and the groups ordered by their
// first member.
func (s *Set[K]) Groups(cmp func(a, b K) int) [][]K {
	byRoot := make(map[K][]K)
	for k := range s.parent {
		r := s.Find(k)
		byRoot[r] = append(byRoot[r], k)
	}
	groups := make([][]K, 0, len(byRoot))
	for _, g := range byRoot {
		slices.SortFunc(g, cmp)
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(a, b []K) int { return cmp(a[0], b[0]) })
	return groups
}
