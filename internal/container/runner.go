// runner.go implements the container-backed matrix executor: one
// disposable container per environment, created from an official
// interpreter image, with the project tree mounted read-only.
//
// The source tree stays read-only inside the container; the script run
// there copies it to a scratch directory first, so editable installation
// and bytecode caches never touch the host checkout.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/mmr-tortoise/qamatrix/internal/matrix"
	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// Paths inside the environment container. The host project is mounted
// read-only at workspacePath; the script copies it to sourcePath before
// installing, and envTmpPath backs the {envtmpdir} substitution.
const (
	workspacePath = "/workspace"
	sourcePath    = "/src"
	envTmpPath    = "/qamatrix/tmp"
)

// Executor runs each matrix environment in its own Docker container.
// It implements matrix.Executor.
type Executor struct {
	cli *Client
	log matrix.Logger

	// KeepContainers leaves finished containers in place instead of
	// removing them, for post-mortem inspection via `docker logs`.
	KeepContainers bool
}

// NewExecutor creates a container executor on top of an existing client.
func NewExecutor(cli *Client, log matrix.Logger) *Executor {
	if log == nil {
		log = func(string, ...interface{}) {}
	}
	return &Executor{cli: cli, log: log}
}

// EnvPython returns the interpreter command inside the container.
// Official interpreter images install the interpreter as "python"
// (or "pypy" for PyPy images) on PATH.
func (e *Executor) EnvPython(plan *matrix.EnvPlan) string {
	if strings.HasPrefix(plan.Interpreter.Executable, "pypy") {
		return "pypy"
	}
	return "python"
}

// EnvTmpDir returns the environment tmp directory inside the container.
func (e *Executor) EnvTmpDir(plan *matrix.EnvPlan) string {
	return envTmpPath
}

// Setup verifies the daemon is reachable and pulls the environment's
// interpreter image. Installation happens in Run's container, since a
// container's filesystem does not outlive it.
func (e *Executor) Setup(ctx context.Context, plan *matrix.EnvPlan) error {
	if err := e.cli.Ping(ctx); err != nil {
		return err
	}

	ref, err := ImageFor(plan.Interpreter.Executable)
	if err != nil {
		return err
	}

	e.log("Environment %s: pulling image %s", plan.Name, ref)
	reader, err := e.cli.Inner().ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	// The pull stream must be drained for the pull to complete; the
	// progress JSON itself is not interesting here.
	_, copyErr := io.Copy(io.Discard, reader)
	closeErr := reader.Close()
	if copyErr != nil {
		return fmt.Errorf("image pull interrupted: %w", copyErr)
	}
	return closeErr
}

// Run creates, starts, and waits on one container executing the
// environment's install-and-test script, then collects its output.
// A non-zero container exit code is the command's result, not an error.
func (e *Executor) Run(ctx context.Context, plan *matrix.EnvPlan, argv []string) (int, string, error) {
	ref, err := ImageFor(plan.Interpreter.Executable)
	if err != nil {
		return -1, "", err
	}

	script := buildScript(plan, argv)
	labels := BuildLabels(plan.Name, plan.ProjectRoot, plan.Interpreter.Executable, time.Now())

	env := []string{"TMPDIR=" + envTmpPath}
	if plan.PythonWarnings != "" {
		env = append(env, "PYTHONWARNINGS="+plan.PythonWarnings)
	}

	created, err := e.cli.Inner().ContainerCreate(ctx,
		&container.Config{
			Image:      ref,
			Cmd:        []string{"/bin/sh", "-ec", script},
			WorkingDir: sourcePath,
			Env:        env,
			Labels:     labels,
		},
		&container.HostConfig{
			// The host checkout is shared read-only; the container works
			// on its own copy under sourcePath.
			Binds: []string{plan.ProjectRoot + ":" + workspacePath + ":ro"},
		},
		nil, nil, "")
	if err != nil {
		return -1, "", model.WrapCLIError(model.ExitDockerNotRunning, "failed to create container", err)
	}

	if !e.KeepContainers {
		// Remove the container whatever happens after this point. A
		// background context is used on purpose: cleanup must still run
		// when ctx is already cancelled.
		defer func() {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = e.cli.Inner().ContainerRemove(cleanupCtx, created.ID, container.RemoveOptions{Force: true})
		}()
	}

	if err := e.cli.Inner().ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return -1, "", model.WrapCLIError(model.ExitDockerNotRunning, "failed to start container", err)
	}

	statusCh, errCh := e.cli.Inner().ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)

	var exitCode int
	select {
	case waitErr := <-errCh:
		return -1, "", waitErr
	case status := <-statusCh:
		if status.Error != nil {
			return -1, "", fmt.Errorf("container wait failed: %s", status.Error.Message)
		}
		exitCode = int(status.StatusCode)
	}

	output, err := e.collectLogs(ctx, created.ID)
	if err != nil {
		return exitCode, output, err
	}
	return exitCode, output, nil
}

// collectLogs fetches and demultiplexes the container's combined
// stdout/stderr stream.
func (e *Executor) collectLogs(ctx context.Context, id string) (string, error) {
	logs, err := e.cli.Inner().ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch container logs: %w", err)
	}
	defer logs.Close()

	// Docker multiplexes stdout and stderr over one stream when the
	// container has no TTY; stdcopy splits them back apart. Both are
	// merged into a single buffer, matching the local executor.
	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, logs); err != nil {
		return buf.String(), fmt.Errorf("failed to read container logs: %w", err)
	}
	return buf.String(), nil
}

// buildScript assembles the shell script run inside the container:
// copy the read-only workspace, install the project with its extras,
// then exec the substituted command.
func buildScript(plan *matrix.EnvPlan, argv []string) string {
	target := "."
	if len(plan.Extras) > 0 {
		target = fmt.Sprintf(".[%s]", strings.Join(plan.Extras, ","))
	}

	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = shellQuote(arg)
	}

	return strings.Join([]string{
		"mkdir -p " + envTmpPath,
		fmt.Sprintf("cp -a %s/. %s", workspacePath, sourcePath),
		fmt.Sprintf("pip install --quiet -e %s", shellQuote(target)),
		"exec " + strings.Join(quoted, " "),
	}, "\n")
}

// shellQuote wraps an argument in single quotes, escaping embedded
// single quotes, so argv survives the /bin/sh round trip verbatim.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ImageFor maps an interpreter executable name to its official Docker
// image reference: python3.8 → python:3.8, python3 → python:3,
// pypy3 → pypy:3. Interpreters without an official image are an error.
func ImageFor(executable string) (string, error) {
	switch {
	case strings.HasPrefix(executable, "python"):
		version := strings.TrimPrefix(executable, "python")
		if version == "" {
			return "python:3", nil
		}
		return "python:" + version, nil
	case strings.HasPrefix(executable, "pypy"):
		version := strings.TrimPrefix(executable, "pypy")
		if version == "" {
			return "pypy:3", nil
		}
		return "pypy:" + version, nil
	default:
		return "", fmt.Errorf("no container image known for interpreter %q", executable)
	}
}

// ListManaged queries the daemon for all containers carrying the
// qamatrix management label, including stopped ones. Used by the clean
// command to find leftovers from interrupted runs.
func ListManaged(ctx context.Context, cli *Client) ([]ManagedContainer, error) {
	// Filtering on the label server-side is cheaper than listing every
	// container and filtering in Go.
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]ManagedContainer, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			// The API reports names with a leading "/" that means
			// nothing to users.
			name = strings.TrimPrefix(c.Names[0], "/")
		}

		meta, parseErr := ParseLabels(c.Labels)
		if parseErr != nil {
			// A container with our managed-by label but a broken label
			// set is still ours to clean up; keep it with what we know.
			meta = &EnvContainer{Env: c.Labels[LabelEnv]}
		}

		result = append(result, ManagedContainer{
			ID:    c.ID,
			Name:  name,
			State: c.State,
			Meta:  *meta,
		})
	}
	return result, nil
}

// ManagedContainer pairs a live container's identity with the qamatrix
// metadata parsed from its labels.
type ManagedContainer struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	State string       `json:"state"`
	Meta  EnvContainer `json:"meta"`
}

// RemoveManaged force-removes every managed container. Returns the
// number removed and the first error encountered, after attempting all.
func RemoveManaged(ctx context.Context, cli *Client) (int, error) {
	managed, err := ListManaged(ctx, cli)
	if err != nil {
		return 0, err
	}

	removed := 0
	var firstErr error
	for _, mc := range managed {
		if rmErr := cli.Inner().ContainerRemove(ctx, mc.ID, container.RemoveOptions{Force: true}); rmErr != nil {
			if firstErr == nil {
				firstErr = rmErr
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}
