// Package config handles loading, defaulting, and validating the
// qamatrix configuration file.
//
// The configuration format is JSONC (JSON with Comments), so this
// package uses github.com/tidwall/jsonc to strip comments before parsing
// with the standard encoding/json library. A YAML variant is also
// accepted for projects that prefer it; the extension decides which
// parser runs.
//
// Key responsibilities:
//   - Locate the configuration file in standard paths
//   - Parse JSONC/YAML into the model policy records
//   - Fill unset sections from the built-in defaults
//   - Validate patterns, actions, environment names, and the minimum
//     tool version before anything is executed
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// Config is the full parsed configuration: the four policy records the
// QA tooling consumes. Sections left out of the file keep their default
// values.
type Config struct {
	// Coverage declares line-exclusion markers and file omission globs.
	Coverage model.CoveragePolicy `json:"coverage" yaml:"coverage"`

	// Lint declares the line-length limit and path exclusions.
	Lint model.LintPolicy `json:"lint" yaml:"lint"`

	// TestRun declares default runner arguments and warning filters.
	TestRun model.TestRunPolicy `json:"testRun" yaml:"testRun"`

	// Matrix declares the environment list and per-environment command.
	Matrix model.EnvironmentMatrix `json:"matrix" yaml:"matrix"`

	// Path is the file the configuration was loaded from. Empty when
	// the built-in defaults are used without a file.
	Path string `json:"-" yaml:"-"`
}

// candidateNames lists the configuration file names probed by FindConfig,
// in priority order. The JSONC spellings come first because JSONC is the
// primary format.
var candidateNames = []string{
	"qamatrix.json",
	"qamatrix.jsonc",
	"qamatrix.yaml",
	"qamatrix.yml",
}

// FindConfig locates the configuration file for a project rooted at root.
// It probes the candidate names in the project root, then in a .config/
// subdirectory. Returns a CLIError with ExitConfigNotFound when no file
// exists in any probed location.
func FindConfig(root string) (string, error) {
	dirs := []string{root, filepath.Join(root, ".config")}
	for _, dir := range dirs {
		for _, name := range candidateNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}
	return "", model.NewCLIError(
		model.ExitConfigNotFound,
		fmt.Sprintf("no qamatrix configuration found under %s (tried %s in the root and .config/)",
			root, strings.Join(candidateNames, ", ")),
	)
}

// Load reads and parses the configuration file at the given path.
// The parser is chosen by extension: .yaml/.yml use the YAML parser,
// everything else is treated as JSONC.
//
// Sections absent from the file are filled from Default(). The returned
// config is parsed but not yet validated; callers run Validate before
// acting on it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitConfigNotFound,
				fmt.Sprintf("configuration file not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	// Start from the defaults so a sparse file only overrides what it
	// mentions. Parsing into a pre-filled struct gives us that merge
	// behavior for free for whole sections; fields inside a present
	// section follow the usual zero-value rules.
	cfg := Default()
	cfg.Path = path

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, model.WrapCLIError(
				model.ExitConfigInvalid,
				fmt.Sprintf("failed to parse %s", path),
				err,
			)
		}
	default:
		// Strip JSONC comments (// and /* */) and trailing commas
		// before handing the bytes to encoding/json.
		clean := jsonc.ToJSON(data)
		if err := json.Unmarshal(clean, cfg); err != nil {
			return nil, model.WrapCLIError(
				model.ExitConfigInvalid,
				fmt.Sprintf("failed to parse %s", path),
				err,
			)
		}
	}

	return cfg, nil
}

// LoadForProject finds and loads the configuration for the project rooted
// at root. When explicitPath is non-empty it is used directly and
// discovery is skipped.
func LoadForProject(root, explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		found, err := FindConfig(root)
		if err != nil {
			return nil, err
		}
		path = found
	}
	return Load(path)
}
