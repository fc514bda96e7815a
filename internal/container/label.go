package container

import (
	"fmt"
	"strings"
	"time"
)

// Label key constants define the Docker label keys applied to every
// container qamatrix creates. The labels make environment containers
// discoverable (for cleanup and listing) without any external state
// file.
//
// All keys share the "qamatrix." prefix to namespace them and avoid
// collisions with labels set by other tools.
const (
	// LabelPrefix is the common prefix for all qamatrix labels.
	LabelPrefix = "qamatrix."

	// LabelManagedBy identifies containers managed by qamatrix.
	// This is the primary label used for filtering and discovery.
	// Key: "qamatrix.managed-by", Value: always "qamatrix".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelEnv stores the matrix environment name the container runs.
	// Key: "qamatrix.env", Value: environment name (e.g. "py38").
	LabelEnv = LabelPrefix + "env"

	// LabelProject stores the absolute path of the project under test
	// on the host. Key: "qamatrix.project".
	LabelProject = LabelPrefix + "project"

	// LabelInterpreter stores the interpreter executable the environment
	// maps to (e.g. "python3.8"). Key: "qamatrix.interpreter".
	LabelInterpreter = LabelPrefix + "interpreter"

	// LabelCreatedAt stores the RFC3339 timestamp of container creation.
	// Key: "qamatrix.created-at".
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "qamatrix"

// EnvContainer is the metadata reconstructed from a managed container's
// labels.
type EnvContainer struct {
	// Env is the matrix environment name.
	Env string `json:"env"`

	// Project is the host path of the project under test.
	Project string `json:"project"`

	// Interpreter is the interpreter executable name.
	Interpreter string `json:"interpreter"`

	// CreatedAt is when the container was created.
	CreatedAt time.Time `json:"createdAt"`
}

// BuildLabels constructs the Docker label map for one environment's
// container. Applying these labels at creation time lets `qamatrix
// clean` find stale containers by a single label filter later.
func BuildLabels(envName, project, interpreter string, createdAt time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy:   ManagedByValue,
		LabelEnv:         envName,
		LabelProject:     project,
		LabelInterpreter: interpreter,
		// RFC3339 in UTC keeps the timestamp readable in `docker
		// inspect` output regardless of the host timezone.
		LabelCreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
}

// ParseLabels reconstructs an EnvContainer from Docker container labels.
// This is the inverse of BuildLabels, used when listing managed
// containers.
//
// Missing required labels cause an error listing all of them at once,
// for easier debugging.
func ParseLabels(labels map[string]string) (*EnvContainer, error) {
	requiredKeys := []string{
		LabelManagedBy,
		LabelEnv,
		LabelProject,
		LabelInterpreter,
		LabelCreatedAt,
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := labels[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required Docker labels: %s", strings.Join(missing, ", "))
	}

	if labels[LabelManagedBy] != ManagedByValue {
		return nil, fmt.Errorf("container is not managed by qamatrix (managed-by=%q)", labels[LabelManagedBy])
	}

	createdAt, err := time.Parse(time.RFC3339, labels[LabelCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("invalid %s label: %w", LabelCreatedAt, err)
	}

	return &EnvContainer{
		Env:         labels[LabelEnv],
		Project:     labels[LabelProject],
		Interpreter: labels[LabelInterpreter],
		CreatedAt:   createdAt,
	}, nil
}
