// Package glob implements shell-style path pattern matching for the
// coverage omit and lint exclude policies.
//
// The semantics deliberately differ from path.Match: a "*" wildcard
// matches any sequence of characters including path separators, so a
// pattern like "*/tests/*" matches "pkg/tests/helpers.py" as well as
// "a/b/tests/c.py". This mirrors the fnmatch-style matching the
// consuming QA tools use for their omit/exclude options.
//
// Patterns are compiled once (to an anchored regular expression) and
// reused; malformed patterns are reported at compile time so the config
// loader can surface them as configuration errors.
package glob

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a compiled glob pattern. Compile once via Compile, then
// call Match any number of times. A Pattern is safe for concurrent use.
type Pattern struct {
	// source is the original glob text, kept for error messages and
	// String().
	source string

	// re is the compiled anchored regular expression.
	re *regexp.Regexp
}

// Compile translates a shell-style glob into a Pattern.
//
// Supported syntax:
//   - "*"  matches any sequence of characters, including "/"
//   - "?"  matches exactly one character
//   - "[...]" matches a character class (passed through to the regexp
//     engine, so ranges like [a-z] work; negation is spelled [!x] or
//     [^x])
//
// Everything else is matched literally. An unterminated character class
// is a compile error.
func Compile(pattern string) (*Pattern, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty glob pattern")
	}

	var sb strings.Builder
	sb.WriteString(`\A`)

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			sb.WriteString(`.*`)
		case '?':
			sb.WriteString(`.`)
		case '[':
			// Find the closing bracket. A "]" directly after "[" (or
			// after the negation marker) is part of the class, per
			// fnmatch convention.
			end := i + 1
			if end < len(runes) && (runes[end] == '^' || runes[end] == '!') {
				end++
			}
			if end < len(runes) && runes[end] == ']' {
				end++
			}
			for end < len(runes) && runes[end] != ']' {
				end++
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("malformed glob pattern %q: unterminated character class", pattern)
			}
			// Pass the class through to the regexp engine, rewriting
			// fnmatch's "[!x]" negation to the regexp "[^x]" spelling.
			class := string(runes[i+1 : end])
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			sb.WriteString("[" + class + "]")
			i = end
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString(`\z`)

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("malformed glob pattern %q: %w", pattern, err)
	}
	return &Pattern{source: pattern, re: re}, nil
}

// Match reports whether the given path matches the pattern.
// Backslash separators are rewritten to forward slashes first
// regardless of platform, so patterns written with "/" match
// Windows-style paths everywhere.
func (p *Pattern) Match(path string) bool {
	return p.re.MatchString(strings.ReplaceAll(path, `\`, "/"))
}

// String returns the original glob text.
func (p *Pattern) String() string {
	return p.source
}

// Set is an ordered collection of compiled patterns.
// The zero value is an empty set that matches nothing.
type Set struct {
	patterns []*Pattern
}

// CompileSet compiles every pattern in the slice. It fails on the first
// malformed pattern so the caller can report it as a config error.
func CompileSet(patterns []string) (*Set, error) {
	set := &Set{}
	for _, raw := range patterns {
		p, err := Compile(raw)
		if err != nil {
			return nil, err
		}
		set.patterns = append(set.patterns, p)
	}
	return set, nil
}

// Match reports whether the path matches any pattern in the set.
func (s *Set) Match(path string) bool {
	for _, p := range s.patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// Len returns the number of patterns in the set.
func (s *Set) Len() int {
	return len(s.patterns)
}
