// Package normalize folds organization names into comparable token sequences:
// diacritics stripped, case folded, punctuation dropped and common abbreviations
// expanded ("Dept." and "Department" both become "department").
//
// The algorithm is pinned by Version; fixtures built on one version stay valid
// only while the version is unchanged.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Version identifies the normalization algorithm.
const Version = "orgmap-normalize/1"

// Abbreviations maps an abbreviated token to its canonical expansion.
// Keys must normalize to a single token; values may expand to several.
type Abbreviations map[string]string

// DefaultAbbreviations returns the folding table for US federal naming.
func DefaultAbbreviations() Abbreviations {
	return Abbreviations{
		"admin": "administration",
		"agcy":  "agency",
		"assn":  "association",
		"bur":   "bureau",
		"ctr":   "center",
		"dept":  "department",
		"div":   "division",
		"fed":   "federal",
		"govt":  "government",
		"hq":    "headquarters",
		"inst":  "institute",
		"intl":  "international",
		"mgmt":  "management",
		"natl":  "national",
		"ofc":   "office",
		"svc":   "service",
		"svcs":  "services",
		"us":    "united states",
		"usa":   "united states",
		"usg":   "united states government",
	}
}

// Normalizer applies the folding pipeline with one abbreviation table.
// It is safe for concurrent use.
type Normalizer struct {
	table map[string][]string
}

// New creates a Normalizer. A nil table disables abbreviation folding.
// Keys that do not fold to exactly one token are ignored.
func New(abbrev Abbreviations) *Normalizer {
	n := &Normalizer{table: make(map[string][]string, len(abbrev))}
	for k, v := range abbrev {
		keys := BaseTokens(k)
		if len(keys) != 1 {
			continue
		}
		expansion := BaseTokens(v)
		if len(expansion) == 0 {
			continue
		}
		n.table[keys[0]] = expansion
	}
	return n
}

// Default creates a Normalizer with DefaultAbbreviations.
func Default() *Normalizer {
	return New(DefaultAbbreviations())
}

// Tokens returns the folded, abbreviation-expanded tokens of name.
func (n *Normalizer) Tokens(name string) []string {
	base := BaseTokens(name)
	out := make([]string, 0, len(base))
	for _, tok := range base {
		if exp, ok := n.table[tok]; ok {
			out = append(out, exp...)
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Normalize returns the tokens of name joined by single spaces.
func (n *Normalizer) Normalize(name string) string {
	return strings.Join(n.Tokens(name), " ")
}

// IsAbbreviated reports whether any token of name is folded by the table.
func (n *Normalizer) IsAbbreviated(name string) bool {
	for _, tok := range BaseTokens(name) {
		if exp, ok := n.table[tok]; ok && !(len(exp) == 1 && exp[0] == tok) {
			return true
		}
	}
	return false
}

// BaseTokens folds and splits name without abbreviation expansion.
func BaseTokens(name string) []string {
	folded := fold(name)

	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range folded {
		switch {
		case r == '.' || r == '\'' || r == '’':
			// "U.S." -> "us", "Nat'l" -> "natl"
		case r == '&':
			flush()
			tokens = append(tokens, "and")
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// fold strips combining marks and case-folds s. Transformers are stateful, so a
// fresh chain is built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}
