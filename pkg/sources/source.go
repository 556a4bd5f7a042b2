// Package sources defines how organization records enter a merge run.
// A Source yields the flat record list of one directory; parsing native
// formats is the Source's job, not the engine's.
package sources

import (
	"context"
	"slices"
	"sync"

	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/org"
)

// Source is one independently rooted directory.
type Source interface {
	// ID returns the unique source id.
	ID() string
	// Records returns every record the source reports.
	Records(ctx context.Context) ([]org.Record, error)
}

// static serves a fixed record list.
type static struct {
	id      string
	records []org.Record
}

// NewStatic returns a Source serving copies of records.
func NewStatic(id string, records []org.Record) Source {
	cloned := make([]org.Record, len(records))
	for i, r := range records {
		cloned[i] = r.Clone()
	}
	return &static{id: id, records: cloned}
}

func (s *static) ID() string { return s.id }

func (s *static) Records(ctx context.Context) ([]org.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]org.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out, nil
}

// Sources is a thread-safe set of sources keyed by id.
type Sources struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// New creates a set from srcs. Duplicate or empty ids are a configuration error.
func New(srcs ...Source) (*Sources, error) {
	s := &Sources{sources: make(map[string]Source, len(srcs))}
	for _, src := range srcs {
		if err := s.Add(src); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts src, rejecting invalid and duplicate ids.
func (s *Sources) Add(src Source) error {
	if src == nil || src.ID() == "" {
		return errors.NewConfigError("sources", nil, "source id cannot be empty")
	}
	if err := org.ValidateSourceID(src.ID()); err != nil {
		return &errors.ConfigError{Field: "sources", Value: src.ID(), Message: "invalid source id", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.sources[src.ID()]; dup {
		return errors.NewConfigError("sources", src.ID(), "duplicate source id")
	}
	s.sources[src.ID()] = src
	return nil
}

// Get returns a source by id.
func (s *Sources) Get(id string) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[id]
	return src, ok
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// IDs returns the sorted source ids.
func (s *Sources) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// List returns the sources ordered by id.
func (s *Sources) List() []Source {
	ids := s.IDs()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Source, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.sources[id])
	}
	return out
}

// Filter returns the sources keep accepts, ordered by id.
func (s *Sources) Filter(keep func(id string) bool) []Source {
	var out []Source
	for _, src := range s.List() {
		if keep(src.ID()) {
			out = append(out, src)
		}
	}
	return out
}
