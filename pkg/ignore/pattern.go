package ignore

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is one compiled ignore line
type Pattern struct {
	// Text is the original line
	Text string
	// Negation is set for lines starting with '!'
	Negation bool
	// DirectoryOnly is set for lines ending with '/'
	DirectoryOnly bool
	// Anchored is set for lines starting with '/'
	Anchored bool

	re *regexp.Regexp
}

// CompilePattern translates a single gitignore-style line.
// It returns nil, nil for comments and blank lines.
func CompilePattern(line string) (*Pattern, error) {
	line = strings.TrimRight(line, "\r")
	line = trimTrailingSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	p := &Pattern{Text: line}

	switch {
	case strings.HasPrefix(line, "!"):
		p.Negation = true
		line = line[1:]
	case strings.HasPrefix(line, `\!`), strings.HasPrefix(line, `\#`):
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		p.DirectoryOnly = true
		line = strings.TrimRight(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Anchored = true
		line = strings.TrimLeft(line, "/")
	}
	if line == "" {
		return nil, nil
	}

	var b strings.Builder
	if p.Anchored {
		b.WriteString("^")
	} else {
		b.WriteString("^(?:.*/)?")
	}
	b.WriteString("(?:")
	b.WriteString(globToRegexp(line))
	// a match may end at a segment boundary above the tested path
	b.WriteString(")(?:/.*)?$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern %q: %w", p.Text, err)
	}
	p.re = re

	return p, nil
}

// Match reports whether the pattern applies to a relative path
func (p *Pattern) Match(path string, isDirectory bool) bool {
	if !p.DirectoryOnly || isDirectory {
		return p.re.MatchString(path)
	}
	// a directory-only pattern applies to a file through one of its
	// parent directories
	for i := 0; i < len(path); i++ {
		if path[i] == '/' && p.re.MatchString(path[:i]) {
			return true
		}
	}
	return false
}

func (p *Pattern) String() string {
	return p.Text
}

// globToRegexp translates glob syntax into a regular expression fragment
func globToRegexp(glob string) string {
	var b strings.Builder
	runes := []rune(glob)

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				atSegmentStart := i == 0 || runes[i-1] == '/'
				switch {
				case atSegmentStart && i+2 < len(runes) && runes[i+2] == '/':
					// "**/" matches zero or more whole segments
					b.WriteString("(?:.*/)?")
					i += 2
				case i+2 == len(runes):
					// trailing "**" matches everything below
					b.WriteString(".*")
					i++
				default:
					// any other "**" is a plain star
					b.WriteString("[^/]*")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := classEnd(runes, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := string(runes[i+1 : end])
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			i = end
		case '\\':
			if i+1 < len(runes) {
				i++
				b.WriteString(regexp.QuoteMeta(string(runes[i])))
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	return b.String()
}

// classEnd returns the index of the ']' closing a bracket expression that
// starts at i, or -1 if it is unterminated
func classEnd(runes []rune, i int) int {
	j := i + 1
	if j < len(runes) && (runes[j] == '!' || runes[j] == '^') {
		j++
	}
	if j < len(runes) && runes[j] == ']' {
		j++
	}
	for ; j < len(runes); j++ {
		if runes[j] == ']' {
			return j
		}
	}
	return -1
}

// trimTrailingSpace removes unescaped trailing spaces
func trimTrailingSpace(s string) string {
	for strings.HasSuffix(s, " ") && !strings.HasSuffix(s, `\ `) {
		s = s[:len(s)-1]
	}
	return s
}
