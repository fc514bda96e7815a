// template.go implements command-template substitution for matrix runs.
//
// The template is a single command line with brace placeholders:
//
//	{envtmpdir}  the environment's private temporary directory
//	{envpython}  the interpreter executing inside the environment
//	{envname}    the environment's declared name
//	{posargs}    the pass-through arguments given after "--" on the CLI
//
// {posargs} expands to zero or more whole arguments; the other
// placeholders substitute textually inside their token. An unknown
// placeholder is a configuration error, not a silent no-op.
package matrix

import (
	"fmt"
	"regexp"
	"strings"
)

// Substitutions carries the per-environment values injected into the
// command template.
type Substitutions struct {
	EnvTmpDir string
	EnvPython string
	EnvName   string
	PosArgs   []string
}

// placeholderRegex finds brace placeholders inside a token.
var placeholderRegex = regexp.MustCompile(`\{([a-z]+)\}`)

// ExpandCommand materializes the argv for one environment from the
// command template. Tokens are split on whitespace before substitution,
// so substituted values (paths with spaces included) stay single
// arguments. A token that is exactly "{posargs}" is spliced; {posargs}
// embedded inside a longer token is rejected since splicing there has no
// sensible meaning.
func ExpandCommand(template string, sub Substitutions) ([]string, error) {
	tokens := strings.Fields(template)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("command template is empty")
	}

	argv := make([]string, 0, len(tokens)+len(sub.PosArgs))
	for _, token := range tokens {
		if token == "{posargs}" {
			argv = append(argv, sub.PosArgs...)
			continue
		}
		if strings.Contains(token, "{posargs}") {
			return nil, fmt.Errorf("{posargs} must be a standalone argument, got %q", token)
		}

		expanded, err := expandToken(token, sub)
		if err != nil {
			return nil, err
		}
		argv = append(argv, expanded)
	}

	if len(argv) == 0 {
		return nil, fmt.Errorf("command template expanded to an empty command")
	}
	return argv, nil
}

// expandToken substitutes every placeholder inside a single token.
func expandToken(token string, sub Substitutions) (string, error) {
	var expandErr error
	expanded := placeholderRegex.ReplaceAllStringFunc(token, func(m string) string {
		name := m[1 : len(m)-1]
		switch name {
		case "envtmpdir":
			return sub.EnvTmpDir
		case "envpython":
			return sub.EnvPython
		case "envname":
			return sub.EnvName
		default:
			if expandErr == nil {
				expandErr = fmt.Errorf("unknown placeholder {%s} in command template", name)
			}
			return m
		}
	})
	if expandErr != nil {
		return "", expandErr
	}
	return expanded, nil
}
