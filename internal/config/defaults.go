// defaults.go holds the built-in configuration a project gets when its
// file leaves sections unset. The values mirror a conventional Python
// QA setup: pytest with terminal coverage reporting, a 110-character
// line limit, and a py27-through-py38 test matrix.
package config

import "github.com/mmr-tortoise/qamatrix/internal/model"

// Default returns a fresh Config populated with the built-in policy
// values. Callers receive a new instance each time, so mutating the
// result never affects later calls.
func Default() *Config {
	return &Config{
		Coverage: model.CoveragePolicy{
			ExcludeLines: []string{
				"pragma: no cover",
			},
			Omit: []string{
				"*/tests/*",
				"setup.py",
			},
		},
		Lint: model.LintPolicy{
			MaxLineLength: 110,
			Exclude: []string{
				".git",
				"__pycache__",
				".qamatrix/*",
			},
		},
		TestRun: model.TestRunPolicy{
			DefaultArgs: []string{
				"--cov",
				"--cov-report", "term-missing",
			},
			// Two independent ignore rules carried over from the stock
			// setup: the runner's complaint about collecting helper
			// classes whose names start with Test, and a deprecation
			// warning emitted by psutil on import.
			WarningFilters: []model.WarningFilter{
				{
					Action:  model.ActionIgnore,
					Message: "cannot collect test class",
				},
				{
					Action:   model.ActionIgnore,
					Category: "DeprecationWarning",
					Module:   "psutil",
				},
			},
		},
		Matrix: model.EnvironmentMatrix{
			Environments:    []string{"py27", "py35", "py36", "py37", "py38"},
			CommandTemplate: "pytest --basetemp={envtmpdir} {posargs}",
			Extras:          []string{"test"},
			MinToolVersion:  "0.1.0",
			SkipMissing:     true,
		},
	}
}
