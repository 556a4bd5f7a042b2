// Package similarity implements the pinned fuzzy string similarity used by the
// matcher. Inputs are expected to be normalized already.
package similarity

import (
	"sort"
	"strings"
)

// Version identifies the similarity algorithm.
const Version = "orgmap-sim/1"

// Ratio returns the indel-normalized similarity 2*LCS/(|a|+|b|) over runes.
// Two empty strings score 0.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 2 * float64(lcs(ra, rb)) / float64(total)
}

// TokenSortRatio compares a and b after sorting their space-separated tokens.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

// Score is the larger of Ratio and TokenSortRatio, in [0,1].
func Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	r := Ratio(a, b)
	if ts := TokenSortRatio(a, b); ts > r {
		return ts
	}
	return r
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// lcs returns the length of the longest common subsequence using two rows.
func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
