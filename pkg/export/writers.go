package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/forest"
)

// TreeIndent is the per-level indentation of the tree format.
const TreeIndent = "  "

// writeTree renders "Name [id] (sources)" lines indented by depth.
func writeTree(w io.Writer, f *forest.Forest) error {
	return f.Walk(func(e forest.Entry) error {
		line := fmt.Sprintf("%s%s [%s] (%s)", strings.Repeat(TreeIndent, e.Depth), e.Name, e.Node.ID(),
			strings.Join(e.Node.Sources(), ", "))
		if e.Node.Resolution().Kind == forest.Conflicted {
			line += " !conflict"
		}
		_, err := fmt.Fprintln(w, line)
		return err
	})
}

func writeJSON(w io.Writer, f *forest.Forest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nonNil(Nested(f))); err != nil {
		return errors.WrapIO("write", "json", err)
	}
	return nil
}

func writeYAML(w io.Writer, f *forest.Forest) error {
	data, err := yaml.MarshalWithOptions(nonNil(Nested(f)), yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return errors.WrapParse("yaml", "export", err)
	}
	_, err = w.Write(data)
	return errors.WrapIO("write", "yaml", err)
}

func writeFlat(w io.Writer, f *forest.Forest) error {
	columns := f.Columns()
	rows := Rows(f)
	records := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record(columns))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.WrapIO("write", "flat", enc.Encode(records))
}

func writeCSV(w io.Writer, f *forest.Forest) error {
	columns := f.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string(nil), fixedColumns...), columns...)); err != nil {
		return errors.WrapIO("write", "csv", err)
	}
	for _, r := range Rows(f) {
		if err := cw.Write(r.values(columns)); err != nil {
			return errors.WrapIO("write", "csv", err)
		}
	}
	cw.Flush()
	return errors.WrapIO("write", "csv", cw.Error())
}

// writeDOT renders a Graphviz digraph; conflicted nodes are drawn dashed.
func writeDOT(w io.Writer, f *forest.Forest) error {
	var sb strings.Builder
	sb.WriteString("digraph orgmap {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")
	var edges []string
	err := f.Walk(func(e forest.Entry) error {
		attrs := fmt.Sprintf("label=%s", dotQuote(e.Name))
		switch {
		case e.Node.Synthetic():
			attrs += ", style=dotted"
		case e.Node.Resolution().Kind == forest.Conflicted:
			attrs += ", style=dashed"
		}
		fmt.Fprintf(&sb, "  %s [%s];\n", dotQuote(e.Node.ID()), attrs)
		for _, c := range e.Children {
			edges = append(edges, fmt.Sprintf("  %s -> %s;\n", dotQuote(e.Node.ID()), dotQuote(c)))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, e := range edges {
		sb.WriteString(e)
	}
	sb.WriteString("}\n")
	_, err = io.WriteString(w, sb.String())
	return errors.WrapIO("write", "dot", err)
}

func dotQuote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
}

// writeEdges writes a node list followed by parent/child edges in one CSV:
// kind,id,target,label.
func writeEdges(w io.Writer, f *forest.Forest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kind", "id", "target", "label"}); err != nil {
		return errors.WrapIO("write", "edges", err)
	}
	var edges [][]string
	err := f.Walk(func(e forest.Entry) error {
		if err := cw.Write([]string{"node", e.Node.ID(), "", e.Name}); err != nil {
			return err
		}
		for _, c := range e.Children {
			edges = append(edges, []string{"edge", e.Node.ID(), c, "parent"})
		}
		return nil
	})
	if err != nil {
		return errors.WrapIO("write", "edges", err)
	}
	for _, e := range edges {
		if err := cw.Write(e); err != nil {
			return errors.WrapIO("write", "edges", err)
		}
	}
	cw.Flush()
	return errors.WrapIO("write", "edges", cw.Error())
}

func nonNil(nodes []*Node) []*Node {
	if nodes == nil {
		return []*Node{}
	}
	return nodes
}
