// Package coverage applies the coverage accounting policy: which files
// and which lines count toward the coverage denominator.
//
// The package does not instrument or execute anything. It answers the
// single question the policy exists to answer, "does this line count?",
// and provides a tree-walking accounting report built on that answer.
// Actual coverage measurement belongs to the external coverage tool this
// policy parameterizes.
package coverage

import (
	"strings"

	"github.com/mmr-tortoise/qamatrix/internal/glob"
	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// Policy is a compiled coverage policy. Build it once with NewPolicy,
// then query it per file/line. A Policy is read-only after construction
// and safe for concurrent use.
type Policy struct {
	// markers holds the literal exclude-line substrings.
	markers []string

	// omit holds the compiled omit globs.
	omit *glob.Set
}

// NewPolicy compiles a CoveragePolicy record into a queryable Policy.
// Malformed omit globs are reported here, at load time, so they surface
// as configuration errors rather than being silently ignored.
func NewPolicy(cfg model.CoveragePolicy) (*Policy, error) {
	omit, err := glob.CompileSet(cfg.Omit)
	if err != nil {
		return nil, err
	}
	return &Policy{
		markers: cfg.ExcludeLines,
		omit:    omit,
	}, nil
}

// OmitsFile reports whether the file at the given path is excluded from
// coverage accounting entirely. Omission is decided purely on the path;
// file contents are never consulted.
func (p *Policy) OmitsFile(path string) bool {
	return p.omit.Match(path)
}

// ExcludesLine reports whether a single source line is excluded from
// coverage accounting. A line is excluded when its trimmed text contains
// any configured marker as a literal substring.
//
// Blank lines are not excluded by this check; whether blank lines count
// is the measuring tool's concern, not the policy's.
func (p *Policy) ExcludesLine(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, marker := range p.markers {
		if strings.Contains(trimmed, marker) {
			return true
		}
	}
	return false
}

// CountsTowardCoverage is the combined policy decision for one line:
// the line counts iff its file is not omitted and the line itself is
// not excluded. File omission takes precedence, so an omitted file's
// lines never count regardless of their text.
func (p *Policy) CountsTowardCoverage(path, line string) bool {
	if p.OmitsFile(path) {
		return false
	}
	return !p.ExcludesLine(line)
}

// Markers returns the configured exclude-line markers, for display in
// the resolved-config output.
func (p *Policy) Markers() []string {
	return p.markers
}
