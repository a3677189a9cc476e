// Package ignore compiles gitignore-style pattern lines into path predicates.
//
// Patterns are evaluated in declaration order and the last matching pattern
// decides the outcome, so a later "!keep.log" re-includes what an earlier
// "*.log" excluded. Default patterns covering treesync's own marker files are
// always placed first.
package ignore

import (
	"strings"
)

// FileName is the per-tree ignore file name
const FileName = ".treesyncignore"

// DefaultPatterns are prepended to every matcher
var DefaultPatterns = []string{
	FileName,
	".treesync/",
	"*.treesync-tmp",
}

// Matcher decides whether relative paths are ignored
type Matcher struct {
	patterns  []*Pattern
	negations bool
}

// Compile builds a matcher from raw lines. DefaultPatterns come first.
// Lines that fail to compile are skipped and reported in the returned error
// slice so callers can log them.
func Compile(lines []string) (*Matcher, []error) {
	m := &Matcher{}
	var errs []error

	all := make([]string, 0, len(DefaultPatterns)+len(lines))
	all = append(all, DefaultPatterns...)
	all = append(all, lines...)

	for _, line := range all {
		p, err := CompilePattern(line)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if p == nil {
			continue
		}
		if p.Negation {
			m.negations = true
		}
		m.patterns = append(m.patterns, p)
	}

	return m, errs
}

// MustCompile is like Compile but panics on an invalid line
func MustCompile(lines ...string) *Matcher {
	m, errs := Compile(lines)
	if len(errs) > 0 {
		panic(errs[0])
	}
	return m
}

// ShouldIgnore reports whether a slash-separated path relative to the tree
// root is excluded. A nil matcher ignores nothing.
func (m *Matcher) ShouldIgnore(path string, isDirectory bool) bool {
	if m == nil {
		return false
	}
	path = strings.Trim(path, "/")
	if path == "" || path == "." {
		return false
	}

	ignored := false
	for _, p := range m.patterns {
		if p.Match(path, isDirectory) {
			ignored = !p.Negation
		}
	}
	return ignored
}

// HasNegations reports whether any pattern re-includes paths. Without
// negations an ignored directory can be pruned from a walk entirely.
func (m *Matcher) HasNegations() bool {
	return m != nil && m.negations
}

// Patterns returns the compiled patterns in evaluation order
func (m *Matcher) Patterns() []*Pattern {
	if m == nil {
		return nil
	}
	out := make([]*Pattern, len(m.patterns))
	copy(out, m.patterns)
	return out
}
