// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/maps"
	"golang.org/x/term"

	"github.com/contenv/contenv/internal/container"
	"github.com/contenv/contenv/internal/provision"
)

var _ Environment = (*ContainerEnvironment)(nil)

// ContainerEnvironment runs a project inside a named, long-lived container.
type ContainerEnvironment struct {
	name        string
	root        string
	projectName string
	dataDir     string

	options  CommonOptions
	config   *ContainerConfig
	identity Identity

	engine    container.Engine
	verbosity int
	logger    *log.Logger
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	environ   func() []string
}

// NewContainerEnvironment validates s and derives the environment's identity.
// No engine call is made.
func NewContainerEnvironment(s Settings) (*ContainerEnvironment, error) {
	if s.Project == nil {
		return nil, errors.New("environment requires a project")
	}
	if s.Engine == nil {
		return nil, errors.New("environment requires a container engine")
	}

	opts, err := ParseCommonOptions(s.Name, s.Config)
	if err != nil {
		return nil, err
	}
	cfg, err := ResolveContainerConfig(s.Name, s.Config, s.HostPython)
	if err != nil {
		return nil, err
	}

	e := &ContainerEnvironment{
		name:        s.Name,
		root:        s.Project.Root,
		projectName: s.Project.Metadata.Name,
		dataDir:     s.DataDir,
		options:     opts,
		config:      cfg,
		identity:    NewIdentity(s.Project.Metadata.Name, s.Name, cfg.BaseImage),
		engine:      s.Engine,
		verbosity:   s.Verbosity,
		logger:      s.Logger,
		stdin:       s.Stdin,
		stdout:      s.Stdout,
		stderr:      s.Stderr,
		environ:     s.Environ,
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	if e.stdout == nil {
		e.stdout = io.Discard
	}
	if e.stderr == nil {
		e.stderr = io.Discard
	}
	if e.environ == nil {
		e.environ = os.Environ
	}
	return e, nil
}

// Name returns the environment name.
func (e *ContainerEnvironment) Name() string { return e.name }

// Options returns the common options.
func (e *ContainerEnvironment) Options() CommonOptions { return e.options }

// Config returns the resolved container configuration.
func (e *ContainerEnvironment) Config() *ContainerConfig { return e.config }

// Identity returns the derived image and container names.
func (e *ContainerEnvironment) Identity() Identity { return e.identity }

// Find returns the container name.
func (e *ContainerEnvironment) Find() string { return e.identity.Container.String() }

// ContainerEnvVars returns the variables passed to every container command.
// The result reflects the process environment at the time of the call.
func (e *ContainerEnvironment) ContainerEnvVars() map[string]string {
	return ResolveEnvVars(e.environ(), e.options.EnvInclude, e.options.EnvExclude, e.options.EnvVars)
}

// SortedEnvVars returns ContainerEnvVars as KEY=VALUE pairs sorted by key.
func (e *ContainerEnvironment) SortedEnvVars() []string {
	vars := e.ContainerEnvVars()
	out := make([]string, 0, len(vars))
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		out = append(out, k+"="+vars[k])
	}
	return out
}

// Create builds the runtime image and creates the container, starting it
// when start-on-creation is set.
func (e *ContainerEnvironment) Create(ctx context.Context) error {
	dockerfile, err := provision.RenderDockerfile(e.config.BaseImage, provision.ModeEnvironment)
	if err != nil {
		return err
	}
	buildDir, err := provision.PersistentBuildDir(e.dataDir, e.identity.ImageID)
	if err != nil {
		return err
	}
	dockerfilePath, err := provision.WriteDockerfile(buildDir, dockerfile)
	if err != nil {
		return err
	}

	e.logger.Debug("building environment image", "env", e.name, "image", e.identity.Image, "dockerfile", dockerfilePath)
	if err := e.engine.Build(ctx, e.buildOptions(buildDir, dockerfilePath, e.identity.Image)); err != nil {
		return err
	}

	err = e.engine.Create(ctx, container.CreateOptions{
		Name:    e.identity.Container,
		Image:   e.identity.Image,
		WorkDir: ProjectPath,
		Volumes: []container.VolumeMount{{
			HostPath:      container.HostFilesystemPath(e.root),
			ContainerPath: container.MountTargetPath(ProjectPath),
		}},
		Env:     e.ContainerEnvVars(),
		Command: e.config.Command,
	})
	if err != nil {
		return err
	}

	if e.config.StartOnCreation {
		return e.start(ctx)
	}
	return nil
}

// Remove deletes the container, stopping it first when start-on-creation is set.
func (e *ContainerEnvironment) Remove(ctx context.Context) error {
	if e.config.StartOnCreation {
		if err := e.stop(ctx); err != nil {
			return err
		}
	}
	return e.engine.Remove(ctx, e.identity.Container, false)
}

// Exists reports whether a container with exactly this environment's name exists.
// The engine's name filter matches substrings, so the listing is checked for
// an exact match.
func (e *ContainerEnvironment) Exists(ctx context.Context) (bool, error) {
	names, err := e.engine.ListNames(ctx, container.ListOptions{All: true, NameFilter: e.identity.Container})
	if err != nil {
		return false, err
	}
	return slices.Contains(names, e.identity.Container.String()), nil
}

// Activate starts the container unless it runs for its whole lifetime.
func (e *ContainerEnvironment) Activate(ctx context.Context) error {
	if e.config.StartOnCreation {
		return nil
	}
	return e.start(ctx)
}

// Deactivate stops the container immediately unless it runs for its whole lifetime.
func (e *ContainerEnvironment) Deactivate(ctx context.Context) error {
	if e.config.StartOnCreation {
		return nil
	}
	return e.stop(ctx)
}

func (e *ContainerEnvironment) start(ctx context.Context) error {
	return e.engine.Start(ctx, e.identity.Container)
}

func (e *ContainerEnvironment) stop(ctx context.Context) error {
	return e.engine.Stop(ctx, e.identity.Container, 0)
}

// activated runs fn between Activate and Deactivate. Deactivate runs even
// when fn fails; both errors are reported.
func (e *ContainerEnvironment) activated(ctx context.Context, fn func() error) error {
	if err := e.Activate(ctx); err != nil {
		return err
	}
	err := fn()
	if deactivateErr := e.Deactivate(context.WithoutCancel(ctx)); deactivateErr != nil {
		return errors.Join(err, deactivateErr)
	}
	return err
}

// InstallProject installs the project from the mounted source tree.
func (e *ContainerEnvironment) InstallProject(ctx context.Context) error {
	return e.activated(ctx, func() error {
		return e.check(ctx, e.identity.Container, e.pipInstall(withFeatures(ProjectPath, e.options.Features)))
	})
}

// InstallProjectDevMode installs the project in editable mode.
func (e *ContainerEnvironment) InstallProjectDevMode(ctx context.Context) error {
	return e.activated(ctx, func() error {
		return e.check(ctx, e.identity.Container, e.pipInstall("--editable", withFeatures(ProjectPath, e.options.Features)))
	})
}

// DependenciesInSync reports whether every dependency is satisfied inside the
// container. An empty dependency list is always in sync and needs no engine call.
func (e *ContainerEnvironment) DependenciesInSync(ctx context.Context) (bool, error) {
	if len(e.options.Dependencies) == 0 {
		return true, nil
	}

	var synced bool
	err := e.activated(ctx, func() error {
		result, err := e.engine.Exec(ctx, e.identity.Container, dependenciesSyncedCommand(e.options.Dependencies), container.ExecOptions{
			Env: e.ContainerEnvVars(),
		})
		if err != nil {
			return err
		}
		e.logger.Debug("dependency check", "env", e.name, "exit_code", result.ExitCode)
		synced = result.ExitCode == 0
		return nil
	})
	return synced, err
}

// SyncDependencies installs the dependencies into the container.
func (e *ContainerEnvironment) SyncDependencies(ctx context.Context) error {
	if len(e.options.Dependencies) == 0 {
		return nil
	}
	return e.activated(ctx, func() error {
		return e.check(ctx, e.identity.Container, e.pipInstall(e.options.Dependencies...))
	})
}

// RunShellCommands runs each command through sh -c inside one activation
// scope, streaming its output. It stops after the first command that exits
// non-zero and returns the exit codes of the commands that ran.
func (e *ContainerEnvironment) RunShellCommands(ctx context.Context, commands []string) ([]int, error) {
	for _, c := range commands {
		if err := ValidateShellCommand(c); err != nil {
			return nil, err
		}
	}

	codes := make([]int, 0, len(commands))
	err := e.activated(ctx, func() error {
		for _, c := range commands {
			result, err := e.engine.Exec(ctx, e.identity.Container, shellCommand(c), e.streamOptions())
			if err != nil {
				return err
			}
			codes = append(codes, result.ExitCode)
			if result.ExitCode != 0 {
				return nil
			}
		}
		return nil
	})
	return codes, err
}

// EnterShell runs the configured shell interactively and returns its exit code.
// A TTY is requested only when stdin is a terminal.
func (e *ContainerEnvironment) EnterShell(ctx context.Context) (int, error) {
	var code int
	err := e.activated(ctx, func() error {
		opts := e.streamOptions()
		opts.Interactive = true
		opts.TTY = isTerminal(e.stdin)
		opts.Stdin = e.stdin

		result, err := e.engine.Exec(ctx, e.identity.Container, []string{e.config.Shell}, opts)
		if err != nil {
			return err
		}
		code = result.ExitCode
		return nil
	})
	return code, err
}

// Describe gathers the state reported by env show.
func (e *ContainerEnvironment) Describe(ctx context.Context) (*Description, error) {
	exists, err := e.Exists(ctx)
	if err != nil {
		return nil, err
	}
	imageExists, err := e.engine.ImageExists(ctx, e.identity.Image)
	if err != nil {
		return nil, err
	}
	return &Description{
		Name:        e.name,
		Type:        e.options.Type,
		Engine:      e.engine.Name(),
		Config:      *e.config,
		Identity:    e.identity,
		Exists:      exists,
		ImageExists: imageExists,
		EnvVars:     e.SortedEnvVars(),
	}, nil
}

// Description is a point-in-time report of a container environment.
type Description struct {
	Name        string          `yaml:"name"`
	Type        string          `yaml:"type"`
	Engine      string          `yaml:"engine"`
	Config      ContainerConfig `yaml:"config"`
	Identity    Identity        `yaml:"identity"`
	Exists      bool            `yaml:"exists"`
	ImageExists bool            `yaml:"image-exists"`
	EnvVars     []string        `yaml:"env-vars,omitempty"`
}

func (e *ContainerEnvironment) pipInstall(args ...string) []string {
	return pipInstallCommand(e.verbosity, args...)
}

func (e *ContainerEnvironment) streamOptions() container.ExecOptions {
	return container.ExecOptions{
		Env:    e.ContainerEnvVars(),
		Stdout: e.stdout,
		Stderr: e.stderr,
	}
}

func (e *ContainerEnvironment) buildOptions(contextDir, dockerfile string, tag container.ImageTag) container.BuildOptions {
	opts := container.BuildOptions{
		ContextDir: contextDir,
		Dockerfile: dockerfile,
		Tag:        tag,
		Pull:       true,
	}
	if e.verbosity > 0 {
		opts.Stdout = e.stdout
		opts.Stderr = e.stderr
	}
	return opts
}

// check runs command with streamed output and fails on a non-zero exit code.
func (e *ContainerEnvironment) check(ctx context.Context, name container.ContainerName, command []string) error {
	result, err := e.engine.Exec(ctx, name, command, e.streamOptions())
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return &container.CommandError{
			Binary:   e.engine.Name(),
			Args:     append([]string{"exec", name.String()}, command...),
			ExitCode: result.ExitCode,
			Err:      fmt.Errorf("exit status %d", result.ExitCode),
		}
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
