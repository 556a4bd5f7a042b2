package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/export"
	"github.com/agentstation/orgmap/pkg/forest"
	"github.com/agentstation/orgmap/pkg/org"
)

func sample(t *testing.T) *forest.Forest {
	t.Helper()
	b := forest.NewBuilder()
	require.NoError(t, b.Add(forest.NodeSpec{
		ID:            "a:1",
		CanonicalName: "US Government",
		Members:       []org.Key{{Source: "a", ID: "1"}, {Source: "b", ID: "1"}},
	}))
	require.NoError(t, b.Add(forest.NodeSpec{
		ID:            "a:2",
		CanonicalName: `Department of "Example"`,
		Members:       []org.Key{{Source: "a", ID: "2"}, {Source: "b", ID: "2"}},
		Attributes: map[string]map[string]any{
			"website": {"a": "https://example.gov", "b": "example.gov"},
		},
	}))
	require.NoError(t, b.Add(forest.NodeSpec{
		ID:            "a:a:unresolved",
		CanonicalName: "a:unresolved",
		Members:       []org.Key{{Source: "a", ID: "a:unresolved"}},
		Synthetic:     true,
	}))
	require.NoError(t, b.Link("a:1", forest.RootResolution()))
	require.NoError(t, b.Link("a:2", forest.ResolvedTo("a:1")))
	require.NoError(t, b.Link("a:a:unresolved", forest.RootResolution()))
	return b.Build()
}

func write(t *testing.T, format export.Format, f *forest.Forest) string {
	t.Helper()
	w, err := export.New(format)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, f))
	return buf.String()
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := export.New("gexf")
	assert.Error(t, err)
}

func TestTree(t *testing.T) {
	out := write(t, export.FormatTree, sample(t))
	want := "US Government [a:1] (a, b)\n" +
		"  Department of \"Example\" [a:2] (a, b)\n" +
		"a:unresolved [a:a:unresolved] (a)\n"
	assert.Equal(t, want, out)
}

func TestJSONAndYAMLAreNested(t *testing.T) {
	f := sample(t)

	var fromJSON []export.Node
	require.NoError(t, json.Unmarshal([]byte(write(t, export.FormatJSON, f)), &fromJSON))
	require.Len(t, fromJSON, 2)
	require.Len(t, fromJSON[0].Children, 1)
	assert.Equal(t, "a:2", fromJSON[0].Children[0].ID)
	assert.Equal(t, "example.gov", fromJSON[0].Children[0].Attributes["website"]["b"])
	assert.True(t, fromJSON[1].Synthetic)

	var fromYAML []export.Node
	require.NoError(t, yaml.Unmarshal([]byte(write(t, export.FormatYAML, f)), &fromYAML))
	require.Len(t, fromYAML, 2)
	assert.Equal(t, forest.Resolved, fromYAML[0].Children[0].Resolution.Kind)
}

func TestFlatKeepsEverySourceColumn(t *testing.T) {
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(write(t, export.FormatFlat, sample(t))), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "a:1", rows[1]["parent_id"])
	assert.Equal(t, "https://example.gov", rows[1]["website__a"])
	assert.Equal(t, "example.gov", rows[1]["website__b"])
	_, ok := rows[0]["website__a"]
	assert.False(t, ok)
}

func TestCSV(t *testing.T) {
	records, err := csv.NewReader(strings.NewReader(write(t, export.FormatCSV, sample(t)))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	header := records[0]
	assert.Equal(t, []string{"website__a", "website__b"}, header[len(header)-2:])
	assert.Equal(t, "US Government > Department of \"Example\"", records[2][3])
	assert.Equal(t, "a:2;b:2", records[2][6])
	assert.Equal(t, "example.gov", records[2][len(header)-1])
}

func TestDOT(t *testing.T) {
	out := write(t, export.FormatDOT, sample(t))
	assert.True(t, strings.HasPrefix(out, "digraph orgmap {\n"))
	assert.Contains(t, out, `"a:2" [label="Department of \"Example\""];`)
	assert.Contains(t, out, `"a:1" -> "a:2";`)
	assert.Contains(t, out, "style=dotted")
}

func TestEdges(t *testing.T) {
	records, err := csv.NewReader(strings.NewReader(write(t, export.FormatEdges, sample(t)))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"kind", "id", "target", "label"}, records[0])
	assert.Equal(t, []string{"edge", "a:1", "a:2", "parent"}, records[len(records)-1])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestCSVWriteErrorsSurface(t *testing.T) {
	for _, format := range []export.Format{export.FormatCSV, export.FormatEdges} {
		t.Run(string(format), func(t *testing.T) {
			w, err := export.New(format)
			require.NoError(t, err)

			err = w.Write(failingWriter{}, sample(t))
			require.Error(t, err)
			var ioErr *pkgerrors.IOError
			assert.True(t, pkgerrors.As(err, &ioErr))
		})
	}
}

func TestEmptyForest(t *testing.T) {
	empty := forest.NewBuilder().Build()
	assert.Equal(t, "[]\n", write(t, export.FormatJSON, empty))
	assert.Equal(t, "", write(t, export.FormatTree, empty))
}
