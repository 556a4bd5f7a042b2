// Package pattern matches source ids against the glob or regex patterns used in
// include/exclude lists.
package pattern

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Type is the pattern syntax.
type Type int

const (
	// Glob uses shell-style patterns (*, ?, []).
	Glob Type = iota
	// Regex uses regular expressions, anchored to the whole id.
	Regex
	// Auto picks Glob or Regex by inspecting the pattern.
	Auto
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Pattern is one compiled pattern.
type Pattern struct {
	raw      string
	typ      Type
	compiled *regexp.Regexp
}

// New compiles raw as the given type.
func New(typ Type, raw string) (*Pattern, error) {
	p := &Pattern{raw: raw, typ: typ}
	if typ == Auto {
		p.typ = detect(raw)
	}

	switch p.typ {
	case Glob:
		if _, err := path.Match(raw, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", raw, err)
		}
	case Regex:
		expr := raw
		if !strings.HasPrefix(expr, "^") {
			expr = "^" + expr
		}
		if !strings.HasSuffix(expr, "$") {
			expr += "$"
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", raw, err)
		}
		p.compiled = re
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", typ)
	}
	return p, nil
}

// Match reports whether id matches.
func (p *Pattern) Match(id string) bool {
	if p.typ == Regex {
		return p.compiled.MatchString(id)
	}
	ok, _ := path.Match(p.raw, id)
	return ok
}

// String returns the raw pattern.
func (p *Pattern) String() string { return p.raw }

// Type returns the resolved pattern type.
func (p *Pattern) Type() Type { return p.typ }

// detect treats anything carrying regex-only syntax as a regex.
func detect(raw string) Type {
	for _, indicator := range []string{"^", "$", `\d`, `\w`, `\s`, "(?", "{", "}", "+", "|", "(", ")"} {
		if strings.Contains(raw, indicator) {
			return Regex
		}
	}
	return Glob
}

// Set matches if any of its patterns match. The empty Set matches nothing.
type Set []*Pattern

// Compile builds a Set with auto-detected pattern types.
func Compile(raws []string) (Set, error) {
	set := make(Set, 0, len(raws))
	for _, raw := range raws {
		p, err := New(Auto, raw)
		if err != nil {
			return nil, err
		}
		set = append(set, p)
	}
	return set, nil
}

// Match reports whether any pattern matches id.
func (s Set) Match(id string) bool {
	for _, p := range s {
		if p.Match(id) {
			return true
		}
	}
	return false
}

// Filter returns the ids that any pattern matches, preserving order.
func (s Set) Filter(ids ...string) []string {
	var out []string
	for _, id := range ids {
		if s.Match(id) {
			out = append(out, id)
		}
	}
	return out
}

// IsLiteral reports whether raw has no glob or regex metacharacters.
func IsLiteral(raw string) bool {
	return !strings.ContainsAny(raw, "*?[]") && detect(raw) == Glob
}
