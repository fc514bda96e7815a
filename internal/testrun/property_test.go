package testrun

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// TestProperty_FirstMatchShadowsLaterFilters pins down order sensitivity
// with gopter: a catch-all ignore at position 0 shadows any filter list
// appended after it, for any warning.
func TestProperty_FirstMatchShadowsLaterFilters(t *testing.T) {
	properties := gopter.NewProperties(nil)

	actionGen := gen.OneConstOf(
		model.ActionError, model.ActionAlways, model.ActionOnce, model.ActionDefault,
	)

	properties.Property("catch-all head wins", prop.ForAll(
		func(laterAction model.FilterAction, message, category string) bool {
			engine, err := NewFilterEngine([]model.WarningFilter{
				{Action: model.ActionIgnore},
				{Action: laterAction, Category: category},
			})
			if err != nil {
				return false
			}
			action, matched := engine.Match(model.Warning{Message: message, Category: category})
			return matched && action == model.ActionIgnore
		},
		actionGen,
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
