package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/orgmap/pkg/provenance"
)

// Report renders a provenance report as cluster, conflict and exclusion tables.
type Report struct {
	*provenance.Report
}

// Raw implements Tabular.
func (r Report) Raw() any { return r.Report }

// Table implements Tabular with the cluster table only.
func (r Report) Table() Data { return r.Clusters() }

// Tables returns every non-empty section.
func (r Report) Tables() []Data {
	tables := []Data{r.Clusters()}
	if len(r.Report.Conflicts) > 0 {
		tables = append(tables, r.Conflicts())
	}
	if len(r.Report.Excluded) > 0 {
		tables = append(tables, r.Excluded())
	}
	if len(r.Report.Warnings) > 0 {
		tables = append(tables, r.Warnings())
	}
	return tables
}

// Clusters lists every merged cluster member on its own row.
func (r Report) Clusters() Data {
	d := Data{
		Title:           fmt.Sprintf("Merged clusters (%d)", len(r.Report.Clusters)),
		Headers:         []string{"ID", "Canonical Name", "Source", "Local ID", "Name"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
	for _, c := range r.Report.Clusters {
		for i, m := range c.Members {
			id, name := "", ""
			if i == 0 {
				id, name = c.ID, c.CanonicalName
			}
			d.Rows = append(d.Rows, []string{id, name, m.Source, m.LocalID, m.Name})
		}
	}
	return d
}

// Conflicts lists every parent decision between disagreeing sources.
func (r Report) Conflicts() Data {
	title := cases.Title(language.English)
	d := Data{
		Title:   fmt.Sprintf("Conflicts (%d)", len(r.Report.Conflicts)),
		Headers: []string{"Node", "Kind", "Chosen", "Alternatives", "Reason"},
	}
	for _, c := range r.Report.Conflicts {
		chosen := c.Chosen
		if chosen == "" {
			chosen = "(root)"
		}
		d.Rows = append(d.Rows, []string{c.NodeID, title.String(c.Kind), chosen, strings.Join(c.Alternatives, ", "), c.Reason})
	}
	return d
}

// Excluded lists the dropped sources.
func (r Report) Excluded() Data {
	d := Data{
		Title:   fmt.Sprintf("Excluded sources (%d)", len(r.Report.Excluded)),
		Headers: []string{"Source", "Error"},
	}
	for _, e := range r.Report.Excluded {
		d.Rows = append(d.Rows, []string{e.Source, e.Error})
	}
	return d
}

// Warnings lists ingestion warnings.
func (r Report) Warnings() Data {
	d := Data{
		Title:   fmt.Sprintf("Warnings (%d)", len(r.Report.Warnings)),
		Headers: []string{"Source", "Local ID", "Kind", "Message"},
	}
	for _, w := range r.Report.Warnings {
		d.Rows = append(d.Rows, []string{w.Source, w.LocalID, w.Kind, w.Message})
	}
	return d
}
