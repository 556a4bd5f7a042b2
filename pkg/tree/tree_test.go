package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/org"
	"github.com/agentstation/orgmap/pkg/tree"
)

func rec(id, name, parent string) org.Record {
	return org.Record{LocalID: id, Name: name, ParentID: parent}
}

func walkNames(t *testing.T, tr *tree.Tree) []string {
	t.Helper()
	var names []string
	require.NoError(t, tr.Walk(func(n *tree.Node) error {
		names = append(names, n.Name())
		return nil
	}))
	return names
}

func TestBuild(t *testing.T) {
	records := []org.Record{
		rec("3", "office of water", "2"),
		rec("2", "Environmental Protection Agency", "1"),
		rec("1", "US Government", ""),
		rec("4", "Office of Air", "2"),
	}

	tr, err := tree.Build("usagov", records)
	require.NoError(t, err)

	assert.Equal(t, "usagov", tr.Source())
	assert.Equal(t, 4, tr.Len())
	assert.Empty(t, tr.Warnings())
	assert.Nil(t, tr.Unresolved())

	roots := tr.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "US Government", roots[0].Name())

	assert.Equal(t, []string{
		"US Government",
		"Environmental Protection Agency",
		"Office of Air",
		"office of water",
	}, walkNames(t, tr), "children sorted case-insensitively")

	water, ok := tr.Node("3")
	require.True(t, ok)
	assert.Equal(t, 2, water.Depth())
	assert.Equal(t, "usagov", water.Record.SourceID, "source id inherited")
	assert.Equal(t, org.Key{Source: "usagov", ID: "3"}, water.Key())
}

func TestBuildDeterministicOrder(t *testing.T) {
	a := []org.Record{rec("1", "Root", ""), rec("2", "beta", "1"), rec("3", "Alpha", "1"), rec("4", "alpha", "1"), rec("5", "Other Root", "")}
	b := []org.Record{a[4], a[3], a[2], a[1], a[0]}

	ta, err := tree.Build("s", a)
	require.NoError(t, err)
	tb, err := tree.Build("s", b)
	require.NoError(t, err)

	assert.Equal(t, walkNames(t, ta), walkNames(t, tb))
	assert.Equal(t, []string{"Other Root", "Root", "Alpha", "alpha", "beta"}, walkNames(t, ta))
}

func TestBuildOrdersByCaseFold(t *testing.T) {
	tr, err := tree.Build("s", []org.Record{
		rec("1", "Root", ""),
		rec("2", "Strassf Office", "1"),
		rec("3", "Straße Office", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Root", "Straße Office", "Strassf Office"}, walkNames(t, tr), "ß folds to ss")
}

func TestBuildUnresolvedParent(t *testing.T) {
	records := []org.Record{
		rec("1", "Department of Example", ""),
		rec("2", "Bureau of Lost Things", "missing"),
		rec("3", "Office of Strays", "also-missing"),
	}

	tr, err := tree.Build("sam", records)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Len())

	orphans := tr.Unresolved()
	require.NotNil(t, orphans)
	assert.True(t, orphans.Synthetic)
	assert.Equal(t, "sam:unresolved", orphans.Name())
	assert.Len(t, orphans.Children, 2)

	roots := tr.Roots()
	require.Len(t, roots, 2)
	assert.Same(t, orphans, roots[1], "synthetic root is last")

	warnings := tr.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, tree.WarningUnresolvedParent, warnings[0].Kind)
	assert.Equal(t, "2", warnings[0].LocalID)
	assert.Contains(t, warnings[0].String(), "missing")
}

func TestBuildUnresolvedIDCollision(t *testing.T) {
	records := []org.Record{
		rec("sam:unresolved", "Oddly Named", ""),
		rec("2", "Orphan", "nope"),
	}
	tr, err := tree.Build("sam", records)
	require.NoError(t, err)

	orphans := tr.Unresolved()
	require.NotNil(t, orphans)
	assert.Equal(t, "sam:unresolved~", orphans.Record.LocalID)
	real, ok := tr.Node("sam:unresolved")
	require.True(t, ok)
	assert.False(t, real.Synthetic)
}

func TestBuildCycles(t *testing.T) {
	tests := []struct {
		name    string
		records []org.Record
		chain   []string
	}{
		{
			name:    "two node cycle",
			records: []org.Record{rec("A", "A", "B"), rec("B", "B", "A")},
			chain:   []string{"A", "B", "A"},
		},
		{
			name:    "self parent",
			records: []org.Record{rec("X", "X", "X"), rec("Y", "Y", "")},
			chain:   []string{"X", "X"},
		},
		{
			name:    "cycle reached from a tail",
			records: []org.Record{rec("1", "tail", "2"), rec("2", "a", "3"), rec("3", "b", "2")},
			chain:   []string{"2", "3", "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tree.Build("broken", tt.records)
			require.Error(t, err)
			assert.True(t, errors.IsCycle(err))
			assert.True(t, errors.IsIngestionError(err))

			var cycle *errors.CycleError
			require.True(t, errors.As(err, &cycle))
			assert.Equal(t, "broken", cycle.Source)
			assert.Equal(t, tt.chain, cycle.Chain)
		})
	}
}

func TestBuildIngestionErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		records []org.Record
	}{
		{name: "empty source", source: "", records: []org.Record{rec("1", "A", "")}},
		{name: "duplicate id", source: "s", records: []org.Record{rec("1", "A", ""), rec("1", "B", "")}},
		{name: "foreign record", source: "s", records: []org.Record{{SourceID: "other", LocalID: "1", Name: "A"}}},
		{name: "empty local id", source: "s", records: []org.Record{rec("", "A", "")}},
		{name: "ambiguous source id", source: "b__c", records: []org.Record{rec("1", "A", "")}},
		{name: "reserved attribute", source: "s", records: []org.Record{{LocalID: "1", Name: "A", Attributes: map[string]any{"orgmap:x": 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tree.Build(tt.source, tt.records)
			require.Error(t, err)
			assert.True(t, errors.IsIngestionError(err))
			assert.False(t, errors.IsCycle(err))
		})
	}
}

func TestBuildEmptyNameWarning(t *testing.T) {
	tr, err := tree.Build("s", []org.Record{rec("1", "  ", "")})
	require.NoError(t, err)
	require.Len(t, tr.Warnings(), 1)
	assert.Equal(t, tree.WarningEmptyName, tr.Warnings()[0].Kind)
}

func TestBuildDoesNotAliasInput(t *testing.T) {
	records := []org.Record{{LocalID: "1", Name: "A", Attributes: map[string]any{"code": "1"}}}
	tr, err := tree.Build("s", records)
	require.NoError(t, err)

	records[0].Attributes["code"] = "changed"
	n, _ := tr.Node("1")
	assert.Equal(t, "1", n.Record.Attributes["code"])
}
