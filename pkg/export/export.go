// Package export writes a merged forest in the reference output formats.
// Every writer walks the forest through forest.Walk, so output order is the
// forest's deterministic order.
package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/forest"
)

// Format names an export format.
type Format string

// Supported formats.
const (
	FormatTree  Format = "tree"
	FormatJSON  Format = "json"
	FormatFlat  Format = "flat"
	FormatCSV   Format = "csv"
	FormatYAML  Format = "yaml"
	FormatDOT   Format = "dot"
	FormatEdges Format = "edges"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatTree, FormatJSON, FormatFlat, FormatCSV, FormatYAML, FormatDOT, FormatEdges}
}

// Writer serializes a forest.
type Writer interface {
	Write(w io.Writer, f *forest.Forest) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(io.Writer, *forest.Forest) error

// Write implements Writer.
func (fn WriterFunc) Write(w io.Writer, f *forest.Forest) error {
	return fn(w, f)
}

// New returns the writer for format.
func New(format Format) (Writer, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatTree, "":
		return WriterFunc(writeTree), nil
	case FormatJSON:
		return WriterFunc(writeJSON), nil
	case FormatFlat:
		return WriterFunc(writeFlat), nil
	case FormatCSV:
		return WriterFunc(writeCSV), nil
	case FormatYAML:
		return WriterFunc(writeYAML), nil
	case FormatDOT:
		return WriterFunc(writeDOT), nil
	case FormatEdges:
		return WriterFunc(writeEdges), nil
	}
	return nil, errors.NewValidationError("format", format, fmt.Sprintf("unsupported export format, must be one of %v", Formats()))
}

// Member is a source record reference in nested output.
type Member struct {
	Source string `json:"source" yaml:"source"`
	ID     string `json:"id" yaml:"id"`
}

// Node is the nested representation used by json and yaml.
type Node struct {
	ID         string                    `json:"id" yaml:"id"`
	Name       string                    `json:"name" yaml:"name"`
	Synthetic  bool                      `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
	Members    []Member                  `json:"members" yaml:"members"`
	Resolution forest.Resolution         `json:"resolution" yaml:"resolution"`
	Attributes map[string]map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Children   []*Node                   `json:"children,omitempty" yaml:"children,omitempty"`
}

// Nested converts the forest into nested nodes.
func Nested(f *forest.Forest) []*Node {
	var roots []*Node
	byID := make(map[string]*Node)
	_ = f.Walk(func(e forest.Entry) error {
		n := &Node{
			ID:         e.Node.ID(),
			Name:       e.Name,
			Synthetic:  e.Node.Synthetic(),
			Resolution: e.Node.Resolution(),
		}
		for _, m := range e.Node.Members() {
			n.Members = append(n.Members, Member{Source: m.Source, ID: m.ID})
		}
		if attrs := e.Node.Attributes(); len(attrs) > 0 {
			n.Attributes = attrs
		}
		byID[n.ID] = n
		if p := e.Node.Parent(); p != nil {
			parent := byID[p.ID()]
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
		return nil
	})
	return roots
}

// Row is one flattened node.
type Row struct {
	ID         string
	Name       string
	ParentID   string
	Path       []string
	Depth      int
	Sources    []string
	Members    []string
	Resolution forest.ResolutionKind
	Synthetic  bool
	Attributes map[string]any
}

// fixedColumns precede the attribute columns in flat and csv output.
var fixedColumns = []string{"id", "name", "parent_id", "path", "depth", "sources", "members", "resolution", "synthetic"}

// Rows flattens the forest in walk order.
func Rows(f *forest.Forest) []Row {
	var rows []Row
	_ = f.Walk(func(e forest.Entry) error {
		r := Row{
			ID:         e.Node.ID(),
			Name:       e.Name,
			Path:       e.Path,
			Depth:      e.Depth,
			Sources:    e.Node.Sources(),
			Resolution: e.Node.Resolution().Kind,
			Synthetic:  e.Node.Synthetic(),
			Attributes: e.Attributes,
		}
		if p := e.Node.Parent(); p != nil {
			r.ParentID = p.ID()
		}
		for _, m := range e.Node.Members() {
			r.Members = append(r.Members, m.String())
		}
		rows = append(rows, r)
		return nil
	})
	return rows
}

// values renders the row against the column list.
func (r Row) values(columns []string) []string {
	out := []string{
		r.ID,
		r.Name,
		r.ParentID,
		strings.Join(r.Path, " > "),
		fmt.Sprint(r.Depth),
		strings.Join(r.Sources, ";"),
		strings.Join(r.Members, ";"),
		string(r.Resolution),
		fmt.Sprint(r.Synthetic),
	}
	for _, col := range columns {
		v, ok := r.Attributes[col]
		if !ok || v == nil {
			out = append(out, "")
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// record renders the row as an object keyed by column.
func (r Row) record(columns []string) map[string]any {
	m := map[string]any{
		"id":         r.ID,
		"name":       r.Name,
		"parent_id":  r.ParentID,
		"path":       slices.Clone(r.Path),
		"depth":      r.Depth,
		"sources":    r.Sources,
		"members":    r.Members,
		"resolution": r.Resolution,
		"synthetic":  r.Synthetic,
	}
	for _, col := range columns {
		if v, ok := r.Attributes[col]; ok {
			m[col] = v
		}
	}
	return m
}
