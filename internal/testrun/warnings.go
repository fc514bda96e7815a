// warnings.go serializes the warning filters into the form the Python
// interpreter consumes, so the policy reaches the test runner without
// any runner-specific configuration.
package testrun

import (
	"strings"

	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// PythonWarnings serializes the ordered filter list into a PYTHONWARNINGS
// value ("action:message:category:module" entries joined by commas).
//
// The interpreter prepends each entry it reads to its filter list, so a
// later entry takes precedence over an earlier one. The entries are
// therefore emitted in reverse declaration order, which preserves the
// policy's first-match-wins semantics inside the interpreter.
//
// Returns the empty string when there are no filters, so callers can
// leave the variable unset.
func PythonWarnings(filters []model.WarningFilter) string {
	if len(filters) == 0 {
		return ""
	}

	entries := make([]string, 0, len(filters))
	for i := len(filters) - 1; i >= 0; i-- {
		entries = append(entries, warningEntry(filters[i]))
	}
	return strings.Join(entries, ",")
}

// warningEntry renders one filter as "action:message:category:module",
// dropping empty trailing fields the way hand-written values do.
func warningEntry(f model.WarningFilter) string {
	fields := []string{f.Action.String(), f.Message, f.Category, f.Module}

	last := len(fields)
	for last > 1 && fields[last-1] == "" {
		last--
	}
	return strings.Join(fields[:last], ":")
}
