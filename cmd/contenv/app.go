// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/contenv/contenv/internal/config"
	"github.com/contenv/contenv/internal/container"
	"github.com/contenv/contenv/internal/environment"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra command handler receives an App reference
	// and reaches configuration, the container engine and the process streams
	// through it.
	App struct {
		Config     config.Provider
		NewEngine  EngineFactory
		HostPython HostPythonFunc

		stdin   io.Reader
		stdout  io.Writer
		stderr  io.Writer
		environ func() []string
		flags   globalFlags
		cfg     *config.Config
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     config.Provider
		NewEngine  EngineFactory
		HostPython HostPythonFunc
		Stdin      io.Reader
		Stdout     io.Writer
		Stderr     io.Writer
		Environ    func() []string
	}

	// EngineFactory returns the container engine of the preferred type.
	EngineFactory func(preferred container.EngineType, logger *log.Logger) (container.Engine, error)

	// HostPythonFunc reports the host's major.minor Python version, or fallback.
	HostPythonFunc func(ctx context.Context, fallback string) string

	// globalFlags holds the persistent flags of the root command.
	globalFlags struct {
		verbose    int
		quiet      int
		configPath string
		projectDir string
		engine     string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.NewEngine == nil {
		deps.NewEngine = defaultEngineFactory
	}
	if deps.HostPython == nil {
		deps.HostPython = environment.DetectHostPython
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ
	}

	return &App{
		Config:     deps.Config,
		NewEngine:  deps.NewEngine,
		HostPython: deps.HostPython,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		environ:    deps.Environ,
	}
}

func defaultEngineFactory(preferred container.EngineType, logger *log.Logger) (container.Engine, error) {
	return container.NewEngine(preferred, container.WithLogger(logger))
}

// loadOptions returns the config load options selected by the global flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.flags.configPath}
}

// verbosity combines the -v and -q counts with the configured default.
func (a *App) verbosity(cfg *config.Config) int {
	v := a.flags.verbose - a.flags.quiet
	if v == 0 && cfg != nil && cfg.UI.Verbose {
		v = 1
	}
	return v
}

// newLogger creates the CLI logger for the given verbosity.
func (a *App) newLogger(verbosity int) *log.Logger {
	level := log.InfoLevel
	switch {
	case verbosity > 0:
		level = log.DebugLevel
	case verbosity < 0:
		level = log.WarnLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: "contenv",
		Level:  level,
	})
}

// status prints a progress message for the user.
func (a *App) status(format string, args ...any) {
	printLine(a.stderr, format, args...)
}
