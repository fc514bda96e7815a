// filter.go implements the warning-filter matching engine.
//
// Filters are compiled once from the policy's ordered list and matched
// top to bottom against each warning; the first matching filter's action
// is applied. Warnings matching no filter fall through to the runner's
// default action.
package testrun

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// compiledFilter is one filter rule with its patterns pre-compiled.
type compiledFilter struct {
	action model.FilterAction

	// message and module are matched at the start of the corresponding
	// warning field (the warning-control convention, equivalent to
	// re.match). nil means "match anything".
	message *regexp.Regexp
	module  *regexp.Regexp

	// category is compared for exact equality. Empty means any category.
	category string
}

// FilterEngine matches warnings against an ordered filter list.
// Build once with NewFilterEngine; safe for concurrent use afterwards.
type FilterEngine struct {
	filters []compiledFilter
}

// NewFilterEngine compiles the policy's warning filters. Invalid actions
// and malformed regular expressions are load-time errors, reported with
// the index of the offending filter.
func NewFilterEngine(filters []model.WarningFilter) (*FilterEngine, error) {
	engine := &FilterEngine{}

	for i, f := range filters {
		if !f.Action.IsValid() {
			return nil, fmt.Errorf("warning filter %d: invalid action %q", i, f.Action)
		}
		// The filter list also travels to the interpreter through
		// PYTHONWARNINGS, whose entries split on ":" and ",". A field
		// containing either cannot be represented there.
		for _, field := range []struct{ name, value string }{
			{"message", f.Message},
			{"category", f.Category},
			{"module", f.Module},
		} {
			if strings.ContainsAny(field.value, ":,") {
				return nil, fmt.Errorf("warning filter %d: %s %q must not contain %q or %q",
					i, field.name, field.value, ":", ",")
			}
		}

		cf := compiledFilter{action: f.Action, category: f.Category}

		if f.Message != "" {
			re, err := regexp.Compile(`\A(?:` + f.Message + `)`)
			if err != nil {
				return nil, fmt.Errorf("warning filter %d: malformed message pattern: %w", i, err)
			}
			cf.message = re
		}
		if f.Module != "" {
			re, err := regexp.Compile(`\A(?:` + f.Module + `)`)
			if err != nil {
				return nil, fmt.Errorf("warning filter %d: malformed module pattern: %w", i, err)
			}
			cf.module = re
		}

		engine.filters = append(engine.filters, cf)
	}
	return engine, nil
}

// Len returns the number of compiled filters.
func (e *FilterEngine) Len() int {
	return len(e.filters)
}

// Match returns the action of the first filter matching the warning.
// The second return value reports whether any filter matched; when
// false, the caller applies the runner's default action.
func (e *FilterEngine) Match(w model.Warning) (model.FilterAction, bool) {
	for _, f := range e.filters {
		if f.matches(w) {
			return f.action, true
		}
	}
	return "", false
}

// matches checks one filter against one warning. Every non-empty field
// of the filter must match; empty fields are wildcards.
func (f *compiledFilter) matches(w model.Warning) bool {
	if f.message != nil && !f.message.MatchString(w.Message) {
		return false
	}
	if f.category != "" && f.category != w.Category {
		return false
	}
	if f.module != nil && !f.module.MatchString(w.Module) {
		return false
	}
	return true
}
