package similarity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/orgmap/pkg/similarity"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "department of example", b: "department of example", want: 1},
		{name: "disjoint", a: "abc", b: "xyz", want: 0},
		{name: "one empty", a: "abc", b: "", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "partial", a: "kitten", b: "sitting", want: 2 * 4.0 / 13},
		{name: "runes not bytes", a: "é", b: "e", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, similarity.Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTokenSortRatio(t *testing.T) {
	assert.InDelta(t, 1.0, similarity.TokenSortRatio("bureau of the census", "census bureau of the"), 1e-9)
	assert.Less(t, similarity.Ratio("bureau of the census", "census bureau of the"), 1.0)
}

func TestScore(t *testing.T) {
	pairs := [][2]string{
		{"office of management", "management office of"},
		{"department of example", "department of examples"},
		{"national park service", "fish and wildlife service"},
		{"a", "b"},
	}

	for _, p := range pairs {
		s := similarity.Score(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.Equal(t, s, similarity.Score(p[1], p[0]), "symmetric for %q", p)
	}

	assert.Equal(t, 1.0, similarity.Score("office of management", "management office of"))
	assert.Equal(t, 0.0, similarity.Score("", "anything"))
	assert.Equal(t, 1.0, similarity.Score("same", "same"))
}
