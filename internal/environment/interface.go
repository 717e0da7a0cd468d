// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/maps"

	"github.com/contenv/contenv/internal/container"
	"github.com/contenv/contenv/internal/project"
)

type (
	// Environment is the lifecycle contract the CLI drives.
	Environment interface {
		// Name returns the environment name.
		Name() string
		// Options returns the inherited options shared by all environment types.
		Options() CommonOptions

		// Create provisions the environment.
		Create(ctx context.Context) error
		// Remove tears the environment down.
		Remove(ctx context.Context) error
		// Exists reports whether the environment has been created.
		Exists(ctx context.Context) (bool, error)
		// Activate makes the environment ready to run commands.
		Activate(ctx context.Context) error
		// Deactivate releases what Activate acquired.
		Deactivate(ctx context.Context) error

		// InstallProject installs the project.
		InstallProject(ctx context.Context) error
		// InstallProjectDevMode installs the project in editable mode.
		InstallProjectDevMode(ctx context.Context) error
		// DependenciesInSync reports whether the dependencies are satisfied.
		DependenciesInSync(ctx context.Context) (bool, error)
		// SyncDependencies installs the dependencies.
		SyncDependencies(ctx context.Context) error

		// RunShellCommands runs each command in turn and returns their exit
		// codes, stopping after the first non-zero one.
		RunShellCommands(ctx context.Context, commands []string) ([]int, error)
		// EnterShell starts an interactive shell and returns its exit code.
		EnterShell(ctx context.Context) (int, error)

		// BuildEnvironment runs fn inside a throwaway build scope.
		BuildEnvironment(ctx context.Context, dependencies []string, fn func(*BuildScope) error) error
		// RunBuild runs one build inside scope and returns the build's exit code.
		RunBuild(ctx context.Context, scope *BuildScope, req BuildRequest) (int, error)

		// Find returns the location of the environment.
		Find() string
	}

	// BuildScope is the state shared between BuildEnvironment and the builds it hosts.
	BuildScope struct {
		// OutputDir is where artifacts are moved when the scope closes
		OutputDir string
	}

	// BuildRequest describes one build run inside a BuildScope.
	BuildRequest struct {
		// Directory receives the artifacts; empty means <root>/dist
		Directory string
		// Targets are passed as --target flags in order
		Targets []string
		// HooksOnly runs only the build hooks
		HooksOnly bool
		// NoHooks disables the build hooks
		NoHooks bool
		// Clean removes existing artifacts first
		Clean bool
		// CleanHooksAfter removes hook artifacts after the build
		CleanHooksAfter bool
		// CleanOnly removes artifacts without building
		CleanOnly bool
	}

	// Settings carries everything an environment implementation is built from.
	Settings struct {
		// Project is the loaded project descriptor
		Project *project.Project
		// Name is the environment name
		Name string
		// Config is the environment's option table, template chain applied
		Config map[string]any
		// DataDir is the per-project data directory of the environment type
		DataDir string
		// Engine runs container operations
		Engine container.Engine
		// Verbosity is the CLI verbosity; negative values are quieter
		Verbosity int
		// Logger receives debug output; nil discards it
		Logger *log.Logger
		// Stdin, Stdout and Stderr are the caller's streams
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Environ returns the current process environment; nil means os.Environ
		Environ func() []string
		// HostPython returns the host Python version used when python is unset
		HostPython func() string
	}

	// Factory builds an Environment from Settings.
	Factory func(Settings) (Environment, error)
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

func init() {
	Register(ContainerType, func(s Settings) (Environment, error) {
		return NewContainerEnvironment(s)
	})
}

// Register makes a factory available under an environment type.
// Registering the same type twice replaces the earlier factory.
func Register(typ string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typ] = factory
}

// Lookup returns the factory registered for typ.
func Lookup(typ string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[typ]
	return f, ok
}

// Types returns the registered environment types in sorted order.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// New builds the environment selected by the type option of s.Config.
func New(s Settings) (Environment, error) {
	opts, err := ParseCommonOptions(s.Name, s.Config)
	if err != nil {
		return nil, err
	}
	factory, ok := Lookup(opts.Type)
	if !ok {
		return nil, fmt.Errorf("%w %q for environment %s (available: %v)", ErrUnknownType, opts.Type, s.Name, Types())
	}
	return factory(s)
}
