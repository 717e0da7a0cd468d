// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/maps"

	"github.com/contenv/contenv/internal/issue"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// VolumeFormatFunc formats a volume mount as the value of a --volume flag.
	// Podman uses this to add SELinux labels.
	VolumeFormatFunc func(volume VolumeMount) string

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides the implementation shared by CLI-based container engines.
	// DockerEngine and PodmanEngine embed it; engine-specific methods (Available,
	// Version, ImageExists) live on the concrete types.
	BaseCLIEngine struct {
		name            string
		binaryPath      string
		execCommand     ExecCommandFunc
		volumeFormatter VolumeFormatFunc
		logger          *log.Logger
	}
)

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithBinaryPath overrides the engine binary resolved from PATH.
func WithBinaryPath(path string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.binaryPath = path
	}
}

// WithVolumeFormatter sets a custom volume formatter function.
func WithVolumeFormatter(fn VolumeFormatFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.volumeFormatter = fn
	}
}

// WithLogger sets the logger engine invocations are reported to at debug level.
func WithLogger(logger *log.Logger) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.logger = logger
	}
}

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:      binaryPath,
		execCommand:     exec.CommandContext,
		volumeFormatter: FormatVolumeMount,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// --- Argument Builders ---

// BuildArgs constructs arguments for an image build.
//
// Generated command: <binary> build [--pull] -t <tag> -f <dockerfile> <context>
func (e *BaseCLIEngine) BuildArgs(opts BuildOptions) []string {
	args := []string{"build"}

	if opts.Pull {
		args = append(args, "--pull")
	}
	if opts.Tag != "" {
		args = append(args, "-t", string(opts.Tag))
	}
	if opts.Dockerfile != "" {
		dockerfilePath := opts.Dockerfile
		if !filepath.IsAbs(dockerfilePath) && opts.ContextDir != "" {
			dockerfilePath = filepath.Join(opts.ContextDir, dockerfilePath)
		}
		args = append(args, "-f", dockerfilePath)
	}
	return append(args, opts.ContextDir)
}

// CreateArgs constructs arguments for creating a stopped container.
//
// Generated command: <binary> create --name <name> [--workdir <dir>] [--volume ...] [--env ...] <image> [command...]
func (e *BaseCLIEngine) CreateArgs(opts CreateOptions) []string {
	args := []string{"create", "--name", string(opts.Name)}

	if opts.WorkDir != "" {
		args = append(args, "--workdir", opts.WorkDir)
	}
	for _, v := range opts.Volumes {
		args = append(args, "--volume", e.volumeFormatter(v))
	}
	args = append(args, envArgs(opts.Env)...)

	args = append(args, string(opts.Image))
	return append(args, opts.Command...)
}

// StartArgs constructs arguments for starting a container.
func (e *BaseCLIEngine) StartArgs(name ContainerName) []string {
	return []string{"start", string(name)}
}

// StopArgs constructs arguments for stopping a container.
// The timeout is rounded down to whole seconds.
func (e *BaseCLIEngine) StopArgs(name ContainerName, timeout time.Duration) []string {
	return []string{"stop", "--time", fmt.Sprintf("%d", int64(timeout/time.Second)), string(name)}
}

// RemoveArgs constructs arguments for a container remove command.
func (e *BaseCLIEngine) RemoveArgs(name ContainerName, force bool) []string {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	return append(args, string(name))
}

// ExecArgs constructs arguments for a container exec command.
//
// Generated command: <binary> exec [-i] [-t] [--workdir <dir>] [--env ...] <container> <command...>
func (e *BaseCLIEngine) ExecArgs(name ContainerName, command []string, opts ExecOptions) []string {
	args := []string{"exec"}

	if opts.Interactive {
		args = append(args, "-i")
	}
	if opts.TTY {
		args = append(args, "-t")
	}
	if opts.WorkDir != "" {
		args = append(args, "--workdir", opts.WorkDir)
	}
	args = append(args, envArgs(opts.Env)...)

	args = append(args, string(name))
	return append(args, command...)
}

// CopyArgs constructs arguments for copying files between a container and the host.
func (e *BaseCLIEngine) CopyArgs(src, dst string) []string {
	return []string{"cp", src, dst}
}

// ListArgs constructs arguments for listing container names.
//
// Generated command: <binary> ps [-a] --format {{.Names}} [--filter name=<name>]
func (e *BaseCLIEngine) ListArgs(opts ListOptions) []string {
	args := []string{"ps"}
	if opts.All {
		args = append(args, "-a")
	}
	args = append(args, "--format", "{{.Names}}")
	if opts.NameFilter != "" {
		args = append(args, "--filter", "name="+string(opts.NameFilter))
	}
	return args
}

// envArgs renders env as --env flags in key order so invocations are reproducible.
func envArgs(env map[string]string) []string {
	args := make([]string, 0, 2*len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		args = append(args, "--env", k+"="+env[k])
	}
	return args
}

// --- Command Execution ---

// CreateCommand creates an exec.Cmd for the given arguments.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	e.logger.Debug("running container engine", "cmd", e.binaryPath+" "+strings.Join(args, " "))
	return e.execCommand(ctx, e.binaryPath, args...)
}

// RunCommand executes a command and returns its stdout.
// On failure the returned *CommandError carries stderr and stdout.
func (e *BaseCLIEngine) RunCommand(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), e.commandError(args, stderr.String()+stdout.String(), err)
	}
	return stdout.String(), nil
}

// RunCommandStreaming executes a command with its output connected to the given writers.
func (e *BaseCLIEngine) RunCommandStreaming(ctx context.Context, stdout, stderr io.Writer, args ...string) error {
	cmd := e.CreateCommand(ctx, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return e.commandError(args, "", err)
	}
	return nil
}

// RunCommandStatus executes a command, discarding its output unless it fails.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	_, err := e.RunCommand(ctx, args...)
	return err
}

func (e *BaseCLIEngine) commandError(args []string, output string, cause error) *CommandError {
	return &CommandError{
		Binary:   e.binaryPath,
		Args:     args,
		ExitCode: exitCodeOf(cause),
		Output:   output,
		Err:      cause,
	}
}

// --- Promoted Engine Methods (shared by Docker and Podman) ---

// Build builds an image from a Dockerfile.
// It validates BuildOptions before executing to catch invalid fields early.
func (e *BaseCLIEngine) Build(ctx context.Context, opts BuildOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	args := e.BuildArgs(opts)

	var err error
	if opts.Stdout == nil && opts.Stderr == nil {
		err = e.RunCommandStatus(ctx, args...)
	} else {
		err = e.RunCommandStreaming(ctx, opts.Stdout, opts.Stderr, args...)
	}
	if err != nil {
		return buildImageError(e.name, opts, err)
	}
	return nil
}

// Create creates a stopped container.
func (e *BaseCLIEngine) Create(ctx context.Context, opts CreateOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return e.RunCommandStatus(ctx, e.CreateArgs(opts)...)
}

// Start starts an existing container.
func (e *BaseCLIEngine) Start(ctx context.Context, name ContainerName) error {
	if err := name.Validate(); err != nil {
		return err
	}
	return e.RunCommandStatus(ctx, e.StartArgs(name)...)
}

// Stop stops a running container.
func (e *BaseCLIEngine) Stop(ctx context.Context, name ContainerName, timeout time.Duration) error {
	if err := name.Validate(); err != nil {
		return err
	}
	return e.RunCommandStatus(ctx, e.StopArgs(name, timeout)...)
}

// Remove removes a container.
func (e *BaseCLIEngine) Remove(ctx context.Context, name ContainerName, force bool) error {
	if err := name.Validate(); err != nil {
		return err
	}
	return e.RunCommandStatus(ctx, e.RemoveArgs(name, force)...)
}

// Exec runs a command in a running container.
// A non-zero exit code is reported in RunResult.ExitCode, not as an error. Only
// failures to launch the engine binary are returned as errors.
func (e *BaseCLIEngine) Exec(ctx context.Context, name ContainerName, command []string, opts ExecOptions) (*RunResult, error) {
	if err := name.Validate(); err != nil {
		return nil, err
	}

	args := e.ExecArgs(name, command, opts)
	cmd := e.CreateCommand(ctx, args...)
	cmd.Stdin = opts.Stdin

	var captured bytes.Buffer
	if opts.Stdout == nil {
		cmd.Stdout = &captured
		cmd.Stderr = &captured
	} else {
		cmd.Stdout = opts.Stdout
		cmd.Stderr = opts.Stderr
	}

	result := &RunResult{ContainerName: name}
	err := cmd.Run()
	result.Output = captured.String()
	if err != nil {
		code := exitCodeOf(err)
		if code < 0 {
			return nil, e.commandError(args, result.Output, err)
		}
		result.ExitCode = code
	}
	return result, nil
}

// Copy copies files between a container and the host.
func (e *BaseCLIEngine) Copy(ctx context.Context, src, dst string) error {
	return e.RunCommandStatus(ctx, e.CopyArgs(src, dst)...)
}

// ListNames returns the names of containers matching opts, one per output line.
func (e *BaseCLIEngine) ListNames(ctx context.Context, opts ListOptions) ([]string, error) {
	out, err := e.RunCommand(ctx, e.ListArgs(opts)...)
	if err != nil {
		return nil, err
	}

	var names []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	return names, scanner.Err()
}

// --- Actionable Error Helpers ---

// buildImageError creates an actionable error for image build failures.
func buildImageError(engine string, opts BuildOptions, cause error) error {
	ctx := issue.NewErrorContext().
		WithOperation("build container image").
		WithResource(string(opts.Tag)).
		WithIssue(issue.ImageBuildFailedId)

	ctx.WithSuggestion("Check that the base image exists (try: " + engine + " pull <base-image>)")
	ctx.WithSuggestion("Verify the build context is readable: " + opts.ContextDir)
	ctx.WithSuggestion("Run with -v to stream the full build output")

	return ctx.Wrap(cause).BuildError()
}
