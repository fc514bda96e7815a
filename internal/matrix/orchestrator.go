// Package matrix implements the sequential multi-environment test
// orchestrator.
//
// For each declared environment, in declared order, the orchestrator:
//  1. resolves the named interpreter (skipping or failing per the
//     skipMissing flag),
//  2. has the executor create a fresh isolated scope,
//  3. has the executor install the project in editable mode plus every
//     declared extra,
//  4. substitutes the environment's values into the command template and
//     executes it,
//  5. records the exit code and captured output as that environment's
//     result.
//
// Environments run strictly sequentially; the only shared state between
// them is the read-only project tree. The run's overall success is the
// logical AND of all non-skipped environments' success.
package matrix

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmr-tortoise/qamatrix/internal/interp"
	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// ScopeDirName is the directory under the project root holding the
// per-environment isolated scopes.
const ScopeDirName = ".qamatrix"

// EnvPlan describes everything an executor needs to set up and exercise
// one environment. Plans are built by the orchestrator and handed to the
// executor; they are read-only from the executor's perspective.
type EnvPlan struct {
	// Name is the declared environment name (e.g. "py38").
	Name string

	// Interpreter is the resolved host interpreter.
	Interpreter *interp.Interpreter

	// ProjectRoot is the absolute path to the project under test.
	// The project tree is treated as read-only during the run.
	ProjectRoot string

	// ScopeDir is the environment's private directory
	// (<root>/.qamatrix/<name>), recreated fresh for every run.
	ScopeDir string

	// TmpDir is the environment's private temporary directory
	// (<scope>/tmp), substituted for {envtmpdir}.
	TmpDir string

	// Extras names the optional dependency groups to install alongside
	// the project.
	Extras []string

	// PythonWarnings is the serialized warning-filter policy, exported
	// as the PYTHONWARNINGS variable in the environment. Empty leaves
	// the variable unset.
	PythonWarnings string
}

// Executor isolates how an environment is materialized and exercised.
// The local implementation uses virtual environments on the host; the
// container implementation runs each environment in a Docker container.
type Executor interface {
	// Setup creates the isolated scope and installs the project plus
	// extras. A Setup failure marks the environment as errored without
	// failing the environments after it.
	Setup(ctx context.Context, plan *EnvPlan) error

	// Run executes the substituted command inside the environment and
	// returns the exit code and combined output. A non-zero exit code is
	// not an error; err is reserved for failures to execute at all.
	Run(ctx context.Context, plan *EnvPlan, argv []string) (exitCode int, output string, err error)

	// EnvPython returns the path substituted for {envpython} in this
	// environment, decided before Setup runs.
	EnvPython(plan *EnvPlan) string

	// EnvTmpDir returns the path substituted for {envtmpdir}. The local
	// executor returns the scope's tmp directory on the host; the
	// container executor returns the path mounted inside the container.
	EnvTmpDir(plan *EnvPlan) string
}

// RunOptions tunes a single matrix run.
type RunOptions struct {
	// Envs restricts the run to a subset of declared environments.
	// Empty means all. The declared order is preserved regardless of the
	// order names are given here; undeclared names are an error.
	Envs []string

	// PosArgs are the pass-through arguments substituted for {posargs}.
	PosArgs []string

	// SkipMissing overrides the configured skipMissing flag when non-nil.
	SkipMissing *bool

	// PythonWarnings is the serialized warning-filter policy copied into
	// every environment plan.
	PythonWarnings string
}

// Logger receives progress messages during a run. The CLI wires its
// verbose logger here; a nil Logger silences progress output.
type Logger func(format string, args ...interface{})

// Orchestrator drives a matrix run. Construct with NewOrchestrator.
type Orchestrator struct {
	cfg      model.EnvironmentMatrix
	resolver *interp.Resolver
	executor Executor
	root     string
	log      Logger
}

// NewOrchestrator creates an orchestrator for the project rooted at root.
func NewOrchestrator(cfg model.EnvironmentMatrix, root string, resolver *interp.Resolver, executor Executor, log Logger) *Orchestrator {
	if log == nil {
		log = func(string, ...interface{}) {}
	}
	return &Orchestrator{
		cfg:      cfg,
		resolver: resolver,
		executor: executor,
		root:     root,
		log:      log,
	}
}

// Run executes the matrix sequentially and returns the aggregate result.
//
// Run itself only returns an error for configuration-level failures
// (unknown environment selection, missing interpreter with skipping
// disabled, cancellation). Per-environment command failures are recorded
// in the result, and the caller decides the process exit code from
// result.Succeeded().
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*model.MatrixResult, error) {
	selected, err := o.selectEnvs(opts.Envs)
	if err != nil {
		return nil, err
	}

	skipMissing := o.cfg.SkipMissing
	if opts.SkipMissing != nil {
		skipMissing = *opts.SkipMissing
	}

	result := &model.MatrixResult{}

	for _, name := range selected {
		// Cancellation between environments: completed environments keep
		// their recorded results, environments not yet started are simply
		// not visited.
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		res := o.runEnv(ctx, name, skipMissing, opts)
		if res == nil {
			// Missing interpreter with skipping disabled aborts the run.
			return result, model.NewCLIError(
				model.ExitInterpreterMissing,
				fmt.Sprintf("environment %q: interpreter %q not found and skipMissing is disabled",
					name, interp.Executable(name)),
			)
		}
		result.Results = append(result.Results, *res)

		if res.Status == model.StatusIncomplete {
			// The in-progress environment was interrupted; stop here.
			return result, ctx.Err()
		}
	}

	return result, nil
}

// runEnv executes one environment end to end and returns its result.
// A nil return means the interpreter is missing and skipping is disabled.
func (o *Orchestrator) runEnv(ctx context.Context, name string, skipMissing bool, opts RunOptions) *model.EnvResult {
	started := time.Now()

	resolved, err := o.resolver.Resolve(name)
	if err != nil {
		if !skipMissing {
			return nil
		}
		o.log("Skipping %s: %v", name, err)
		return &model.EnvResult{
			Name:   name,
			Status: model.StatusSkipped,
			Reason: err.Error(),
		}
	}
	o.log("Environment %s: interpreter %s", name, resolved.Path)

	scopeDir := filepath.Join(o.root, ScopeDirName, name)
	plan := &EnvPlan{
		Name:           name,
		Interpreter:    resolved,
		ProjectRoot:    o.root,
		ScopeDir:       scopeDir,
		TmpDir:         filepath.Join(scopeDir, "tmp"),
		Extras:         o.cfg.Extras,
		PythonWarnings: opts.PythonWarnings,
	}

	if err := o.executor.Setup(ctx, plan); err != nil {
		if ctx.Err() != nil {
			return o.incomplete(plan, started, err)
		}
		o.log("Environment %s: setup failed: %v", name, err)
		return &model.EnvResult{
			Name:        name,
			Status:      model.StatusError,
			Interpreter: resolved.Path,
			Reason:      fmt.Sprintf("setup failed: %v", err),
			Duration:    time.Since(started),
		}
	}

	argv, err := ExpandCommand(o.cfg.CommandTemplate, Substitutions{
		EnvTmpDir: o.executor.EnvTmpDir(plan),
		EnvPython: o.executor.EnvPython(plan),
		EnvName:   name,
		PosArgs:   opts.PosArgs,
	})
	if err != nil {
		return &model.EnvResult{
			Name:        name,
			Status:      model.StatusError,
			Interpreter: resolved.Path,
			Reason:      err.Error(),
			Duration:    time.Since(started),
		}
	}

	o.log("Environment %s: running %s", name, strings.Join(argv, " "))
	exitCode, output, err := o.executor.Run(ctx, plan, argv)
	if err != nil {
		if ctx.Err() != nil {
			return o.incomplete(plan, started, err)
		}
		return &model.EnvResult{
			Name:        name,
			Status:      model.StatusError,
			Interpreter: resolved.Path,
			Command:     strings.Join(argv, " "),
			Reason:      fmt.Sprintf("failed to execute command: %v", err),
			Duration:    time.Since(started),
		}
	}

	status := model.StatusPassed
	if exitCode != 0 {
		status = model.StatusFailed
	}
	o.log("Environment %s: %s (exit code %d)", name, status, exitCode)

	return &model.EnvResult{
		Name:        name,
		Status:      status,
		ExitCode:    exitCode,
		Interpreter: resolved.Path,
		Command:     strings.Join(argv, " "),
		Output:      output,
		Duration:    time.Since(started),
	}
}

// incomplete records an interrupted in-progress environment.
func (o *Orchestrator) incomplete(plan *EnvPlan, started time.Time, cause error) *model.EnvResult {
	o.log("Environment %s: interrupted", plan.Name)
	return &model.EnvResult{
		Name:        plan.Name,
		Status:      model.StatusIncomplete,
		Interpreter: plan.Interpreter.Path,
		Reason:      fmt.Sprintf("interrupted: %v", cause),
		Duration:    time.Since(started),
	}
}

// selectEnvs returns the environments to visit, in declared order.
// An empty selection means every declared environment; selecting a name
// the matrix does not declare is an error.
func (o *Orchestrator) selectEnvs(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return o.cfg.Environments, nil
	}

	declared := make(map[string]bool, len(o.cfg.Environments))
	for _, name := range o.cfg.Environments {
		declared[name] = true
	}

	wanted := make(map[string]bool, len(requested))
	for _, name := range requested {
		if !declared[name] {
			return nil, model.NewCLIError(
				model.ExitConfigInvalid,
				fmt.Sprintf("environment %q is not declared in the matrix (declared: %s)",
					name, strings.Join(o.cfg.Environments, ", ")),
			)
		}
		wanted[name] = true
	}

	var selected []string
	for _, name := range o.cfg.Environments {
		if wanted[name] {
			selected = append(selected, name)
		}
	}
	return selected, nil
}
