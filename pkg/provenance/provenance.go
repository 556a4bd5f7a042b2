// Package provenance records where every merged node came from and every
// decision the merge had to make on the way.
package provenance

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/orgmap/pkg/errors"
)

// Conflict kinds.
const (
	KindParent = "parent"
)

// Algorithm pins the versions and parameters a run used.
type Algorithm struct {
	Normalize  string   `yaml:"normalize" json:"normalize"`
	Similarity string   `yaml:"similarity" json:"similarity"`
	Threshold  float64  `yaml:"threshold" json:"threshold"`
	Decay      float64  `yaml:"decay" json:"decay"`
	Priority   []string `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// Member is one source record folded into a cluster.
type Member struct {
	Source  string `yaml:"source" json:"source"`
	LocalID string `yaml:"local_id" json:"local_id"`
	Name    string `yaml:"name" json:"name"`
}

// Cluster is a merged node with more than one member.
type Cluster struct {
	ID            string   `yaml:"id" json:"id"`
	CanonicalName string   `yaml:"canonical_name" json:"canonical_name"`
	Members       []Member `yaml:"members" json:"members"`
}

// Sources returns the distinct member sources.
func (c Cluster) Sources() []string {
	var out []string
	for _, m := range c.Members {
		if !slices.Contains(out, m.Source) {
			out = append(out, m.Source)
		}
	}
	return out
}

// Conflict is a decision between disagreeing sources.
type Conflict struct {
	NodeID       string   `yaml:"node_id" json:"node_id"`
	Kind         string   `yaml:"kind" json:"kind"`
	Candidates   []string `yaml:"candidates" json:"candidates"`
	Chosen       string   `yaml:"chosen,omitempty" json:"chosen,omitempty"`
	Alternatives []string `yaml:"alternatives,omitempty" json:"alternatives,omitempty"`
	Reason       string   `yaml:"reason" json:"reason"`
}

// Excluded is a source dropped from the run.
type Excluded struct {
	Source string `yaml:"source" json:"source"`
	Error  string `yaml:"error" json:"error"`
}

// Warning is a non-fatal ingestion finding.
type Warning struct {
	Source  string `yaml:"source" json:"source"`
	LocalID string `yaml:"local_id" json:"local_id"`
	Kind    string `yaml:"kind" json:"kind"`
	Message string `yaml:"message" json:"message"`
}

// Report is the provenance record of one merge run.
type Report struct {
	RunID     string     `yaml:"run_id,omitempty" json:"run_id,omitempty"`
	Algorithm Algorithm  `yaml:"algorithm" json:"algorithm"`
	Clusters  []Cluster  `yaml:"clusters" json:"clusters"`
	Conflicts []Conflict `yaml:"conflicts" json:"conflicts"`
	Excluded  []Excluded `yaml:"excluded" json:"excluded"`
	Warnings  []Warning  `yaml:"warnings" json:"warnings"`
}

// Sort orders every section so that reports of identical runs are identical.
func (r *Report) Sort() {
	slices.SortFunc(r.Clusters, func(a, b Cluster) int { return strings.Compare(a.ID, b.ID) })
	slices.SortFunc(r.Conflicts, func(a, b Conflict) int {
		return cmp.Or(strings.Compare(a.NodeID, b.NodeID), strings.Compare(a.Kind, b.Kind))
	})
	slices.SortFunc(r.Excluded, func(a, b Excluded) int { return strings.Compare(a.Source, b.Source) })
	slices.SortStableFunc(r.Warnings, func(a, b Warning) int {
		return cmp.Or(strings.Compare(a.Source, b.Source), strings.Compare(a.LocalID, b.LocalID))
	})
}

// String renders a human-readable summary.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Merge Report\n")
	sb.WriteString("============\n")
	if r.RunID != "" {
		fmt.Fprintf(&sb, "Run: %s\n", r.RunID)
	}
	fmt.Fprintf(&sb, "Algorithm: %s, %s (threshold %.2f, decay %.2f)\n\n",
		r.Algorithm.Normalize, r.Algorithm.Similarity, r.Algorithm.Threshold, r.Algorithm.Decay)

	if len(r.Excluded) > 0 {
		sb.WriteString("Excluded sources:\n")
		for _, e := range r.Excluded {
			fmt.Fprintf(&sb, "  - %s: %s\n", e.Source, e.Error)
		}
		sb.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&sb, "Warnings: %d\n", len(r.Warnings))
		for i, w := range r.Warnings {
			if i >= 10 {
				fmt.Fprintf(&sb, "  ... and %d more\n", len(r.Warnings)-i)
				break
			}
			fmt.Fprintf(&sb, "  - [%s] %s:%s %s\n", w.Kind, w.Source, w.LocalID, w.Message)
		}
		sb.WriteString("\n")
	}

	if len(r.Conflicts) > 0 {
		sb.WriteString("Conflicts:\n")
		for _, c := range r.Conflicts {
			chosen := c.Chosen
			if chosen == "" {
				chosen = "(root)"
			}
			fmt.Fprintf(&sb, "  %s (%s): %s chosen from %v, reason %s\n",
				c.NodeID, c.Kind, chosen, c.Candidates, c.Reason)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Merged clusters: %d\n", len(r.Clusters))
	for _, c := range r.Clusters {
		fmt.Fprintf(&sb, "  %s %q\n", c.ID, c.CanonicalName)
		for _, m := range c.Members {
			fmt.Fprintf(&sb, "    - %s:%s %q\n", m.Source, m.LocalID, m.Name)
		}
	}

	return sb.String()
}

// WriteYAML writes the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	data, err := yaml.MarshalWithOptions(r, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return errors.WrapParse("yaml", "report", err)
	}
	if _, err := w.Write(data); err != nil {
		return errors.WrapIO("write", "report", err)
	}
	return nil
}

// Load reads a report written by WriteYAML.
// Returns nil, nil if the file doesn't exist.
func Load(path string) (*Report, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &r, nil
}
