// validate.go checks a parsed configuration before any policy is acted
// on. Validation compiles every glob and filter pattern once, so the
// same malformed-pattern errors users would otherwise hit mid-run
// surface immediately at load time instead.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/qamatrix/internal/coverage"
	"github.com/mmr-tortoise/qamatrix/internal/lint"
	"github.com/mmr-tortoise/qamatrix/internal/model"
	"github.com/mmr-tortoise/qamatrix/internal/testrun"
)

// Validate checks the full configuration against the running tool
// version. It returns a CLIError with ExitConfigInvalid on the first
// problem found.
//
// Checks performed:
//   - coverage omit globs and lint exclude globs compile
//   - the line-length limit is positive
//   - every warning filter has a valid action and compilable patterns
//   - every environment name is well formed, with no duplicates
//   - the command template is non-empty
//   - MinToolVersion, when set, is not newer than toolVersion
func Validate(cfg *Config, toolVersion string) error {
	if _, err := coverage.NewPolicy(cfg.Coverage); err != nil {
		return model.WrapCLIError(model.ExitConfigInvalid, "invalid coverage policy", err)
	}
	if _, err := lint.NewChecker(cfg.Lint); err != nil {
		return model.WrapCLIError(model.ExitConfigInvalid, "invalid lint policy", err)
	}
	if _, err := testrun.NewFilterEngine(cfg.TestRun.WarningFilters); err != nil {
		return model.WrapCLIError(model.ExitConfigInvalid, "invalid test-run policy", err)
	}

	if len(cfg.Matrix.Environments) == 0 {
		return model.NewCLIError(model.ExitConfigInvalid, "matrix declares no environments")
	}
	seen := make(map[string]bool, len(cfg.Matrix.Environments))
	for _, name := range cfg.Matrix.Environments {
		if err := model.ValidateEnvName(name); err != nil {
			return model.WrapCLIError(model.ExitConfigInvalid, "invalid environment matrix", err)
		}
		if seen[name] {
			return model.NewCLIError(model.ExitConfigInvalid,
				fmt.Sprintf("duplicate environment %q in matrix", name))
		}
		seen[name] = true
	}

	if strings.TrimSpace(cfg.Matrix.CommandTemplate) == "" {
		return model.NewCLIError(model.ExitConfigInvalid, "matrix command template is empty")
	}

	if cfg.Matrix.MinToolVersion != "" {
		ok, err := versionAtLeast(toolVersion, cfg.Matrix.MinToolVersion)
		if err != nil {
			return model.WrapCLIError(model.ExitConfigInvalid, "invalid minToolVersion", err)
		}
		if !ok {
			return model.NewCLIError(model.ExitConfigInvalid,
				fmt.Sprintf("configuration requires qamatrix >= %s, this is %s",
					cfg.Matrix.MinToolVersion, toolVersion))
		}
	}

	return nil
}

// versionAtLeast reports whether version have satisfies the minimum want.
// Versions are dotted integer sequences ("0.4.1"); a leading "v" and any
// pre-release suffix after "-" are ignored. Development builds ("dev")
// always satisfy the check so local builds are never locked out.
func versionAtLeast(have, want string) (bool, error) {
	if have == "dev" || have == "" {
		return true, nil
	}

	haveParts, err := parseVersion(have)
	if err != nil {
		return false, err
	}
	wantParts, err := parseVersion(want)
	if err != nil {
		return false, err
	}

	// Compare component-wise; missing components count as zero.
	n := len(haveParts)
	if len(wantParts) > n {
		n = len(wantParts)
	}
	for i := 0; i < n; i++ {
		h, w := 0, 0
		if i < len(haveParts) {
			h = haveParts[i]
		}
		if i < len(wantParts) {
			w = wantParts[i]
		}
		if h != w {
			return h > w, nil
		}
	}
	return true, nil
}

// parseVersion splits a dotted version string into integer components.
func parseVersion(v string) ([]int, error) {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}
	fields := strings.Split(v, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q", v)
		}
		parts = append(parts, n)
	}
	return parts, nil
}
