package testrun

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmr-tortoise/qamatrix/internal/model"
)

func TestPythonWarningsEmpty(t *testing.T) {
	assert.Equal(t, "", PythonWarnings(nil))
	assert.Equal(t, "", PythonWarnings([]model.WarningFilter{}))
}

func TestPythonWarningsSingleFilter(t *testing.T) {
	filters := []model.WarningFilter{
		{Action: model.ActionIgnore, Category: "DeprecationWarning", Module: "psutil"},
	}
	assert.Equal(t, "ignore::DeprecationWarning:psutil", PythonWarnings(filters))
}

func TestPythonWarningsDropsEmptyTrailingFields(t *testing.T) {
	filters := []model.WarningFilter{
		{Action: model.ActionError},
	}
	assert.Equal(t, "error", PythonWarnings(filters))

	filters = []model.WarningFilter{
		{Action: model.ActionIgnore, Message: "cannot collect test class"},
	}
	assert.Equal(t, "ignore:cannot collect test class", PythonWarnings(filters))
}

func TestPythonWarningsReversesDeclarationOrder(t *testing.T) {
	// The interpreter gives precedence to later PYTHONWARNINGS entries,
	// so the first declared filter must be serialized last.
	filters := []model.WarningFilter{
		{Action: model.ActionIgnore, Category: "DeprecationWarning"},
		{Action: model.ActionError},
	}
	assert.Equal(t, "error,ignore::DeprecationWarning", PythonWarnings(filters))
}
