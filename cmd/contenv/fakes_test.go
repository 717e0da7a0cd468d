// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/contenv/contenv/internal/config"
	"github.com/contenv/contenv/internal/container"
	"github.com/contenv/contenv/internal/environment"
)

type (
	// fakeEnvironment records the lifecycle calls the CLI makes.
	fakeEnvironment struct {
		name      string
		opts      environment.CommonOptions
		exists    bool
		inSync    bool
		runCodes  []int
		shellCode int
		// buildCodes are returned by successive RunBuild calls
		buildCodes []int
		createErr  error
		removeErr  error

		calls    []string
		commands []string
		requests []environment.BuildRequest
		deps     [][]string
	}

	fakeConfigProvider struct {
		cfg *config.Config
		err error
	}

	// stubEngine answers the queries made while resolving and inspecting an
	// environment. Any other engine call panics through the nil embedded Engine.
	stubEngine struct {
		container.Engine
		names []string
	}
)

var _ environment.Environment = (*fakeEnvironment)(nil)

func newFakeEnvironment() *fakeEnvironment {
	return &fakeEnvironment{
		name:   "default",
		opts:   environment.CommonOptions{Type: environment.ContainerType, DevMode: true},
		inSync: true,
	}
}

func (f *fakeEnvironment) Name() string { return f.name }

func (f *fakeEnvironment) Options() environment.CommonOptions { return f.opts }

func (f *fakeEnvironment) Find() string { return "my_app_" + f.name }

func (f *fakeEnvironment) Exists(context.Context) (bool, error) { return f.exists, nil }

func (f *fakeEnvironment) Activate(context.Context) error { return nil }

func (f *fakeEnvironment) Deactivate(context.Context) error { return nil }

func (f *fakeEnvironment) EnterShell(context.Context) (int, error) {
	f.calls = append(f.calls, "shell")
	return f.shellCode, nil
}

func (f *fakeEnvironment) Create(context.Context) error {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return f.createErr
	}
	f.exists = true
	return nil
}

func (f *fakeEnvironment) Remove(context.Context) error {
	f.calls = append(f.calls, "remove")
	f.exists = false
	return f.removeErr
}

func (f *fakeEnvironment) InstallProject(context.Context) error {
	f.calls = append(f.calls, "install")
	return nil
}

func (f *fakeEnvironment) InstallProjectDevMode(context.Context) error {
	f.calls = append(f.calls, "install-dev")
	return nil
}

func (f *fakeEnvironment) DependenciesInSync(context.Context) (bool, error) {
	f.calls = append(f.calls, "check-deps")
	return f.inSync, nil
}

func (f *fakeEnvironment) SyncDependencies(context.Context) error {
	f.calls = append(f.calls, "sync")
	f.inSync = true
	return nil
}

func (f *fakeEnvironment) RunShellCommands(_ context.Context, commands []string) ([]int, error) {
	f.calls = append(f.calls, "run")
	f.commands = append(f.commands, commands...)
	return f.runCodes, nil
}

func (f *fakeEnvironment) BuildEnvironment(_ context.Context, deps []string, fn func(*environment.BuildScope) error) error {
	f.calls = append(f.calls, "build-env")
	f.deps = append(f.deps, deps)
	return fn(&environment.BuildScope{})
}

func (f *fakeEnvironment) RunBuild(_ context.Context, scope *environment.BuildScope, req environment.BuildRequest) (int, error) {
	f.calls = append(f.calls, "build")
	f.requests = append(f.requests, req)
	scope.OutputDir = req.Directory
	if len(f.buildCodes) == 0 {
		return 0, nil
	}
	code := f.buildCodes[0]
	f.buildCodes = f.buildCodes[1:]
	return code, nil
}

func (p *fakeConfigProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	return p.cfg, p.err
}

func (e *stubEngine) Name() string { return "docker" }

func (e *stubEngine) ListNames(context.Context, container.ListOptions) ([]string, error) {
	return e.names, nil
}

func (e *stubEngine) ImageExists(context.Context, container.ImageTag) (bool, error) {
	return false, nil
}

type testApp struct {
	app    *App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	// engineType is the engine type the CLI asked the factory for
	engineType container.EngineType
}

// newTestApp builds an App with default configuration, the given engine and
// captured output streams.
func newTestApp(t *testing.T, engine container.Engine) *testApp {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	ta := &testApp{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	ta.app = NewApp(Dependencies{
		Config: &fakeConfigProvider{cfg: cfg},
		NewEngine: func(preferred container.EngineType, _ *log.Logger) (container.Engine, error) {
			ta.engineType = preferred
			return engine, nil
		},
		HostPython: func(context.Context, string) string { return "3.12" },
		Stdin:      &bytes.Buffer{},
		Stdout:     ta.stdout,
		Stderr:     ta.stderr,
		Environ:    func() []string { return nil },
	})
	return ta
}

// run executes the root command with args.
func (ta *testApp) run(args ...string) error {
	rootCmd := NewRootCommand(ta.app)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}
