package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/orgmap/pkg/provenance"
)

func sampleReport() Report {
	return Report{&provenance.Report{
		Clusters: []provenance.Cluster{{
			ID:            "a:2",
			CanonicalName: "Department of Example",
			Members: []provenance.Member{
				{Source: "a", LocalID: "2", Name: "Department of Example"},
				{Source: "b", LocalID: "2", Name: "Dept. of Example"},
			},
		}},
		Conflicts: []provenance.Conflict{{NodeID: "a:2", Kind: "parent", Alternatives: []string{"b:1"}, Reason: "cycle"}},
	}}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestReportTables(t *testing.T) {
	r := sampleReport()

	clusters := r.Clusters()
	require.Len(t, clusters.Rows, 2)
	assert.Equal(t, []string{"a:2", "Department of Example", "a", "2", "Department of Example"}, clusters.Rows[0])
	assert.Equal(t, "", clusters.Rows[1][0], "cluster id only on first member row")

	conflicts := r.Conflicts()
	assert.Equal(t, []string{"a:2", "Parent", "(root)", "b:1", "cycle"}, conflicts.Rows[0])

	assert.Len(t, r.Tables(), 2, "empty sections are skipped")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, sampleReport().Tables()))
	out := buf.String()
	assert.Contains(t, out, "Merged clusters (1)")
	assert.Contains(t, out, "Dept. of Example")
	assert.Contains(t, out, "Conflicts (1)")
}

func TestJSONFormatterUsesRawReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, sampleReport()))

	var decoded provenance.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "a:2", decoded.Clusters[0].ID)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, sampleReport()))
	assert.Contains(t, buf.String(), "canonical_name: Department of Example")
}
