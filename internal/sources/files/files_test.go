package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/orgmap/pkg/config"
	pkgerrors "github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/org"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestOpen(t *testing.T) {
	src, err := Open(config.SourceSpec{Path: "/data/usaspending.yml"})
	require.NoError(t, err)
	assert.Equal(t, "usaspending", src.ID())
	assert.Equal(t, FormatYAML, src.Format())

	src, err = Open(config.SourceSpec{ID: "sam", Path: "/data/export.txt", Format: "CSV"})
	require.NoError(t, err)
	assert.Equal(t, "sam", src.ID())
	assert.Equal(t, FormatCSV, src.Format())

	_, err = Open(config.SourceSpec{Path: "/data/export.xml"})
	assert.True(t, pkgerrors.IsConfigError(err))

	_, err = Open(config.SourceSpec{})
	assert.True(t, pkgerrors.IsConfigError(err))
}

func TestRecordsYAML(t *testing.T) {
	path := writeFile(t, "usaspending.yaml", `
source: usaspending
records:
  - local_id: "1"
    name: US Government
  - local_id: "2"
    name: Department of Example
    parent_local_id: "1"
    attributes:
      website: https://example.gov
      employees: 120
`)
	src, err := Open(config.SourceSpec{Path: path})
	require.NoError(t, err)

	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "US Government", records[0].Name)
	assert.False(t, records[0].HasParent())
	assert.Equal(t, "1", records[1].ParentID)
	assert.Equal(t, "https://example.gov", records[1].Attributes["website"])
	assert.True(t, org.IsScalar(records[1].Attributes["employees"]))
}

func TestRecordsYAMLList(t *testing.T) {
	path := writeFile(t, "fedreg.yaml", `
- local_id: a
  name: Agency A
- local_id: b
  name: Bureau B
  parent_local_id: a
`)
	src, err := Open(config.SourceSpec{Path: path})
	require.NoError(t, err)
	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[1].ParentID)
}

func TestRecordsJSON(t *testing.T) {
	path := writeFile(t, "sam.json", `[
  {"local_id": "10", "name": "Dept. of Example", "attributes": {"code": "DOE", "active": true}},
  {"local_id": "11", "name": "Office of Audit", "parent_local_id": "10"}
]`)
	src, err := Open(config.SourceSpec{Path: path})
	require.NoError(t, err)
	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, true, records[0].Attributes["active"])
	assert.Equal(t, "10", records[1].ParentID)
}

func TestRecordsWrongSourceDeclared(t *testing.T) {
	path := writeFile(t, "sam.json", `{"source": "other", "records": []}`)
	src, err := Open(config.SourceSpec{Path: path})
	require.NoError(t, err)
	_, err = src.Records(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsIngestionError(err))
}

func TestRecordsCSV(t *testing.T) {
	path := writeFile(t, "sam.csv", "local_id,name,parent_local_id,website,code\n"+
		"1,US Government,,,USG\n"+
		"2,\"Department of Example, The\",1,https://example.gov,\n")
	src, err := Open(config.SourceSpec{Path: path})
	require.NoError(t, err)

	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, map[string]any{"code": "USG"}, records[0].Attributes)
	assert.Equal(t, "Department of Example, The", records[1].Name)
	assert.Equal(t, map[string]any{"website": "https://example.gov"}, records[1].Attributes)
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{name: "bad header", input: "id,name,parent\n1,a,\n", line: 1},
		{name: "short header", input: "local_id,name\n", line: 1},
		{name: "ragged row", input: "local_id,name,parent_local_id\n1,a,,extra\n", line: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			var perr *pkgerrors.ParseError
			require.True(t, pkgerrors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
		})
	}

	records, err := ParseCSV(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordsMissingFile(t *testing.T) {
	src, err := Open(config.SourceSpec{Path: filepath.Join(t.TempDir(), "gone.csv")})
	require.NoError(t, err)
	_, err = src.Records(context.Background())
	var ioErr *pkgerrors.IOError
	assert.True(t, pkgerrors.As(err, &ioErr))
}
