package similarity_test

import (
	"testing"

	"github.com/agentstation/orgmap/pkg/normalize"
	"github.com/agentstation/orgmap/pkg/similarity"
)

// Benchmark data
var benchNames = []string{
	"Department of Health and Human Services",
	"Dept. of Health & Human Svcs",
	"Centers for Medicare and Medicaid Services",
	"Office of the Inspector General",
	"National Institutes of Health",
	"U.S. Fish and Wildlife Service",
}

func BenchmarkScore(b *testing.B) {
	n := normalize.Default()
	normalized := make([]string, len(benchNames))
	for i, name := range benchNames {
		normalized[i] = n.Normalize(name)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x := normalized[i%len(normalized)]
		y := normalized[(i+1)%len(normalized)]
		_ = similarity.Score(x, y)
	}
}

func BenchmarkNormalize(b *testing.B) {
	n := normalize.Default()
	for i := 0; i < b.N; i++ {
		_ = n.Normalize(benchNames[i%len(benchNames)])
	}
}
