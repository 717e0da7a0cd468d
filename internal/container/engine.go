// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// EngineTypePodman selects the Podman CLI.
	EngineTypePodman EngineType = "podman"
	// EngineTypeDocker selects the Docker CLI.
	EngineTypeDocker EngineType = "docker"
	// EngineTypeAuto selects whichever engine is available, preferring Docker.
	EngineTypeAuto EngineType = "auto"
)

var (
	// ErrInvalidImageTag is the sentinel error wrapped by InvalidImageTagError.
	ErrInvalidImageTag = errors.New("invalid image tag")

	// ErrInvalidContainerName is the sentinel error wrapped by InvalidContainerNameError.
	ErrInvalidContainerName = errors.New("invalid container name")

	// ErrInvalidEngineType is returned when an EngineType value is not recognized.
	ErrInvalidEngineType = errors.New("invalid container engine type")
)

type (
	// Engine defines the interface for container operations.
	Engine interface {
		// Name returns the engine name (docker or podman)
		Name() string
		// Available checks if the engine is available on the system
		Available() bool
		// Version returns the engine server version
		Version(ctx context.Context) (string, error)

		// Build builds an image from a Dockerfile
		Build(ctx context.Context, opts BuildOptions) error
		// Create creates a stopped container
		Create(ctx context.Context, opts CreateOptions) error
		// Start starts an existing container
		Start(ctx context.Context, name ContainerName) error
		// Stop stops a running container, killing it after timeout
		Stop(ctx context.Context, name ContainerName, timeout time.Duration) error
		// Remove removes a container
		Remove(ctx context.Context, name ContainerName, force bool) error
		// Exec runs a command in a running container
		Exec(ctx context.Context, name ContainerName, command []string, opts ExecOptions) (*RunResult, error)
		// Copy copies files between a container and the host ("name:path" addresses the container)
		Copy(ctx context.Context, src, dst string) error
		// ListNames returns the names of containers matching opts
		ListNames(ctx context.Context, opts ListOptions) ([]string, error)
		// ImageExists checks if an image exists locally
		ImageExists(ctx context.Context, image ImageTag) (bool, error)
	}

	// ImageTag is a container image reference such as "python_3.12:contenv".
	ImageTag string

	// InvalidImageTagError is returned when an ImageTag is empty or whitespace-only.
	InvalidImageTagError struct {
		Value ImageTag
	}

	// ContainerName is the name a container is created under.
	ContainerName string

	// InvalidContainerNameError is returned when a ContainerName is empty or contains whitespace.
	InvalidContainerNameError struct {
		Value ContainerName
	}

	// BuildOptions contains options for building an image.
	// When Stdout and Stderr are both nil the build output is captured and
	// attached to the returned error on failure.
	BuildOptions struct {
		// ContextDir is the build context directory
		ContextDir string
		// Dockerfile is the path to the Dockerfile (relative paths resolve against ContextDir)
		Dockerfile string
		// Tag is the image tag
		Tag ImageTag
		// Pull always attempts to pull a newer version of the base image
		Pull bool
		// Stdout is where to write build output
		Stdout io.Writer
		// Stderr is where to write build errors
		Stderr io.Writer
	}

	// CreateOptions contains options for creating a container.
	CreateOptions struct {
		// Name is the container name
		Name ContainerName
		// Image is the image to create the container from
		Image ImageTag
		// WorkDir is the working directory inside the container
		WorkDir string
		// Volumes are bind mounts
		Volumes []VolumeMount
		// Env contains environment variables baked into the container
		Env map[string]string
		// Command is appended after the image as the container's arguments
		Command []string
	}

	// ExecOptions contains options for running a command in a running container.
	// When Stdout is nil the command output (stdout and stderr) is captured into
	// RunResult.Output.
	ExecOptions struct {
		// Env contains environment variables for this invocation only
		Env map[string]string
		// WorkDir is the working directory inside the container
		WorkDir string
		// Interactive keeps stdin open
		Interactive bool
		// TTY allocates a pseudo-TTY
		TTY bool
		// Stdin is the standard input
		Stdin io.Reader
		// Stdout is where to write standard output
		Stdout io.Writer
		// Stderr is where to write standard error
		Stderr io.Writer
	}

	// ListOptions filters a container listing.
	ListOptions struct {
		// All includes stopped containers
		All bool
		// NameFilter is passed to the engine's name filter, which matches substrings
		NameFilter ContainerName
	}

	// RunResult contains the result of running a command in a container.
	RunResult struct {
		// ContainerName is the container the command ran in
		ContainerName ContainerName
		// ExitCode is the exit code
		ExitCode int
		// Output is the captured output when no Stdout writer was supplied
		Output string
	}

	// EngineType identifies the container engine type.
	EngineType string

	// ErrEngineNotAvailable is returned when a container engine is not available.
	ErrEngineNotAvailable struct {
		Engine string
		Reason string
	}
)

// String returns the string representation of the ImageTag.
func (t ImageTag) String() string { return string(t) }

// Validate returns an error if the ImageTag is empty or whitespace-only.
func (t ImageTag) Validate() error {
	if strings.TrimSpace(string(t)) == "" {
		return &InvalidImageTagError{Value: t}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidImageTagError) Error() string {
	return fmt.Sprintf("invalid image tag %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidImageTag for errors.Is() compatibility.
func (e *InvalidImageTagError) Unwrap() error { return ErrInvalidImageTag }

// String returns the string representation of the ContainerName.
func (n ContainerName) String() string { return string(n) }

// Validate returns an error if the ContainerName is empty or contains whitespace.
func (n ContainerName) Validate() error {
	if n == "" || strings.ContainsAny(string(n), " \t\r\n") {
		return &InvalidContainerNameError{Value: n}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidContainerNameError) Error() string {
	return fmt.Sprintf("invalid container name %q: must be non-empty and contain no whitespace", e.Value)
}

// Unwrap returns ErrInvalidContainerName for errors.Is() compatibility.
func (e *InvalidContainerNameError) Unwrap() error { return ErrInvalidContainerName }

// Validate returns an error if the BuildOptions cannot produce a valid build invocation.
func (o BuildOptions) Validate() error {
	var errs []error
	if strings.TrimSpace(o.ContextDir) == "" {
		errs = append(errs, fmt.Errorf("build context directory must be non-empty"))
	}
	if err := o.Tag.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate returns an error if any field of the CreateOptions is invalid.
func (o CreateOptions) Validate() error {
	var errs []error
	if err := o.Name.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.Image.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, v := range o.Volumes {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// String returns the string representation of the EngineType.
func (t EngineType) String() string { return string(t) }

// Validate returns an error if the EngineType is not docker, podman or auto.
func (t EngineType) Validate() error {
	switch t {
	case EngineTypeDocker, EngineTypePodman, EngineTypeAuto:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: docker, podman, auto)", ErrInvalidEngineType, t)
	}
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a new container engine based on preference, falling back
// to the other engine when the preferred one is not available.
func NewEngine(preferredType EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	switch preferredType {
	case EngineTypePodman:
		engine := NewPodmanEngine(opts...)
		if engine.Available() {
			return engine, nil
		}
		dockerEngine := NewDockerEngine(opts...)
		if dockerEngine.Available() {
			return dockerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeDocker:
		engine := NewDockerEngine(opts...)
		if engine.Available() {
			return engine, nil
		}
		podmanEngine := NewPodmanEngine(opts...)
		if podmanEngine.Available() {
			return podmanEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypeAuto:
		return AutoDetectEngine(opts...)

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available container engine, preferring Docker.
func AutoDetectEngine(opts ...BaseCLIEngineOption) (Engine, error) {
	docker := NewDockerEngine(opts...)
	if docker.Available() {
		return docker, nil
	}

	podman := NewPodmanEngine(opts...)
	if podman.Available() {
		return podman, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}
