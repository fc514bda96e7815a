// local.go implements the default executor: one virtual environment per
// matrix environment, created on the host with `<interpreter> -m venv`.
package matrix

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// LocalExecutor materializes environments as virtual environments under
// the project's scope directory. Each run recreates the scope, so the
// installation set is always fresh.
type LocalExecutor struct {
	log Logger
}

// NewLocalExecutor creates a LocalExecutor.
func NewLocalExecutor(log Logger) *LocalExecutor {
	if log == nil {
		log = func(string, ...interface{}) {}
	}
	return &LocalExecutor{log: log}
}

// venvDir returns the virtual environment directory inside a scope.
func venvDir(plan *EnvPlan) string {
	return filepath.Join(plan.ScopeDir, "venv")
}

// venvBin returns the executable directory of the virtual environment
// ("bin" on Unix, "Scripts" on Windows).
func venvBin(plan *EnvPlan) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venvDir(plan), "Scripts")
	}
	return filepath.Join(venvDir(plan), "bin")
}

// EnvPython returns the interpreter inside the virtual environment.
func (e *LocalExecutor) EnvPython(plan *EnvPlan) string {
	name := "python"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(venvBin(plan), name)
}

// EnvTmpDir returns the environment's private tmp directory on the host.
func (e *LocalExecutor) EnvTmpDir(plan *EnvPlan) string {
	return plan.TmpDir
}

// Setup recreates the environment scope, builds the virtual environment,
// and installs the project in editable mode together with the declared
// extras.
func (e *LocalExecutor) Setup(ctx context.Context, plan *EnvPlan) error {
	// A stale scope from a previous run must not leak installed
	// packages into this one.
	if err := os.RemoveAll(plan.ScopeDir); err != nil {
		return fmt.Errorf("failed to clear environment scope: %w", err)
	}
	if err := os.MkdirAll(plan.TmpDir, 0o755); err != nil {
		return fmt.Errorf("failed to create environment scope: %w", err)
	}

	e.log("Environment %s: creating virtual environment", plan.Name)
	if out, err := e.run(ctx, plan.ProjectRoot, nil, plan.Interpreter.Path, "-m", "venv", venvDir(plan)); err != nil {
		return fmt.Errorf("venv creation failed: %w\n%s", err, out)
	}

	// Editable install keeps the shared source tree authoritative: the
	// environment imports straight from it instead of a copied snapshot.
	target := "."
	if len(plan.Extras) > 0 {
		target = fmt.Sprintf(".[%s]", strings.Join(plan.Extras, ","))
	}

	e.log("Environment %s: installing project (%s)", plan.Name, target)
	out, err := e.run(ctx, plan.ProjectRoot, e.environ(plan),
		e.EnvPython(plan), "-m", "pip", "install", "--quiet", "-e", target)
	if err != nil {
		return fmt.Errorf("project installation failed: %w\n%s", err, out)
	}
	return nil
}

// Run executes the substituted command inside the virtual environment.
// The command's first token is resolved against the venv's executable
// directory first, so "pytest" finds the venv's pytest rather than a
// host-wide one.
func (e *LocalExecutor) Run(ctx context.Context, plan *EnvPlan, argv []string) (int, string, error) {
	resolved := e.resolveCommand(plan, argv[0])

	cmd := exec.CommandContext(ctx, resolved, argv[1:]...)
	cmd.Dir = plan.ProjectRoot
	cmd.Env = e.environ(plan)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := buf.String()

	if err == nil {
		return 0, output, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok && ctx.Err() == nil {
		// The command ran and exited non-zero: that is a test failure,
		// not an execution error.
		return exitErr.ExitCode(), output, nil
	}
	return -1, output, err
}

// resolveCommand prefers the venv's copy of a command when it exists.
func (e *LocalExecutor) resolveCommand(plan *EnvPlan, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	candidate := filepath.Join(venvBin(plan), name)
	if runtime.GOOS == "windows" {
		candidate += ".exe"
	}
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return name
}

// environ builds the process environment for commands running inside the
// virtual environment: the venv's bin directory leads PATH, VIRTUAL_ENV
// points at the venv, the environment's private tmpdir is exported, and
// the warning-filter policy is passed through PYTHONWARNINGS.
func (e *LocalExecutor) environ(plan *EnvPlan) []string {
	env := os.Environ()
	out := make([]string, 0, len(env)+4)
	for _, kv := range env {
		// Drop inherited values that are re-set below.
		if strings.HasPrefix(kv, "PATH=") || strings.HasPrefix(kv, "TMPDIR=") ||
			strings.HasPrefix(kv, "PYTHONWARNINGS=") {
			continue
		}
		out = append(out, kv)
	}
	out = append(out,
		"PATH="+venvBin(plan)+string(os.PathListSeparator)+os.Getenv("PATH"),
		"VIRTUAL_ENV="+venvDir(plan),
		"TMPDIR="+plan.TmpDir,
	)
	if plan.PythonWarnings != "" {
		out = append(out, "PYTHONWARNINGS="+plan.PythonWarnings)
	}
	return out
}

// run executes a setup command and returns its combined output.
func (e *LocalExecutor) run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}
