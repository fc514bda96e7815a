// Package interp resolves environment names to Python interpreter
// executables on the host.
//
// The naming convention follows the usual matrix shorthand: "py27" means
// python2.7, "py310" means python3.10, "pypy3" means pypy3, and anything
// without the "py" prefix pattern (e.g. "jython") is looked up verbatim.
//
// Resolution is a PATH probe only; the interpreter is not executed.
// Whether an unresolvable interpreter skips its environment or fails the
// run is the orchestrator's decision, driven by the skipMissing flag.
package interp

import (
	"fmt"
	"os/exec"
	"regexp"
)

// Interpreter describes a successfully resolved interpreter.
type Interpreter struct {
	// EnvName is the environment name that was resolved (e.g. "py38").
	EnvName string `json:"envName"`

	// Executable is the command name that was probed (e.g. "python3.8").
	Executable string `json:"executable"`

	// Path is the absolute path returned by the PATH lookup.
	Path string `json:"path"`
}

// Resolver maps environment names to interpreter paths.
//
// The lookPath field defaults to exec.LookPath and exists so tests can
// substitute a fake without touching the host PATH.
type Resolver struct {
	lookPath func(file string) (string, error)
}

// NewResolver creates a Resolver that probes the real PATH.
func NewResolver() *Resolver {
	return &Resolver{lookPath: exec.LookPath}
}

// NewResolverWithLookup creates a Resolver with a custom lookup function.
// Used by tests and by callers that resolve against a restricted PATH.
func NewResolverWithLookup(lookPath func(string) (string, error)) *Resolver {
	return &Resolver{lookPath: lookPath}
}

// cpythonRegex matches CPython shorthand names: "py27", "py3", "py310",
// "py3.13". Capture groups: major, compact minor, dotted minor.
var cpythonRegex = regexp.MustCompile(`^py([0-9])([0-9]+)?$|^py([0-9])\.([0-9]+)$`)

// pypyRegex matches PyPy shorthand names: "pypy", "pypy2", "pypy3".
var pypyRegex = regexp.MustCompile(`^pypy([0-9]?)$`)

// Executable translates an environment name into the interpreter command
// to probe. Names outside the recognized shorthand are returned as-is,
// which covers entries like "jython" and explicit executable names.
func Executable(envName string) string {
	if m := cpythonRegex.FindStringSubmatch(envName); m != nil {
		switch {
		case m[3] != "": // dotted form: py3.13
			return "python" + m[3] + "." + m[4]
		case m[2] != "": // compact form: py27, py310
			return "python" + m[1] + "." + m[2]
		default: // major only: py3
			return "python" + m[1]
		}
	}
	if m := pypyRegex.FindStringSubmatch(envName); m != nil {
		return "pypy" + m[1]
	}
	return envName
}

// Resolve probes the PATH for the environment's interpreter.
// The returned error wraps the lookup failure and names both the
// environment and the executable, so skip/fail messages stay uniform.
func (r *Resolver) Resolve(envName string) (*Interpreter, error) {
	executable := Executable(envName)
	path, err := r.lookPath(executable)
	if err != nil {
		return nil, fmt.Errorf("interpreter %q for environment %q not found: %w", executable, envName, err)
	}
	return &Interpreter{
		EnvName:    envName,
		Executable: executable,
		Path:       path,
	}, nil
}
