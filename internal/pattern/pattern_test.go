package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		typ     Type
		want    Type
		wantErr bool
	}{
		{name: "glob", raw: "usa*", typ: Glob, want: Glob},
		{name: "regex", raw: "^sam-\\d+$", typ: Regex, want: Regex},
		{name: "auto glob", raw: "fed*", typ: Auto, want: Glob},
		{name: "auto literal", raw: "usaspending", typ: Auto, want: Glob},
		{name: "auto regex", raw: "(sam|fedreg)", typ: Auto, want: Regex},
		{name: "bad regex", raw: "(unclosed", typ: Regex, wantErr: true},
		{name: "bad glob", raw: "[unclosed", typ: Glob, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.typ, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Type())
			assert.Equal(t, tt.raw, p.String())
		})
	}
}

func TestMatch(t *testing.T) {
	glob, err := New(Auto, "usa*")
	require.NoError(t, err)
	assert.True(t, glob.Match("usaspending"))
	assert.False(t, glob.Match("sam"))

	re, err := New(Auto, "(sam|fedreg)")
	require.NoError(t, err)
	assert.True(t, re.Match("sam"))
	assert.False(t, re.Match("sam2"), "regex is anchored")
}

func TestSet(t *testing.T) {
	set, err := Compile([]string{"usa*", "sam"})
	require.NoError(t, err)

	assert.Equal(t, []string{"usaspending", "sam"}, set.Filter("usaspending", "fedreg", "sam"))
	assert.False(t, Set(nil).Match("anything"))

	_, err = Compile([]string{"(bad"})
	assert.Error(t, err)
}

func TestIsLiteral(t *testing.T) {
	assert.True(t, IsLiteral("usaspending"))
	assert.False(t, IsLiteral("usa*"))
	assert.False(t, IsLiteral("a|b"))
}
