// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"github.com/contenv/contenv/internal/config"
	"github.com/contenv/contenv/internal/container"
	"github.com/contenv/contenv/internal/environment"
	"github.com/contenv/contenv/internal/project"
)

// session is the state a command resolves before touching an environment.
type session struct {
	app       *App
	cfg       *config.Config
	logger    *log.Logger
	verbosity int
	project   *project.Project
	engine    container.Engine
}

// newSession loads the configuration and the project selected by the global flags.
func (a *App) newSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	verbosity := a.verbosity(cfg)
	logger := a.newLogger(verbosity)

	dir := a.flags.projectDir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, actionable(err, "determine working directory", "")
		}
	}
	root, err := project.Find(dir)
	if err != nil {
		return nil, actionable(err, "find project", dir)
	}
	proj, err := project.Load(root)
	if err != nil {
		return nil, actionable(err, "load project", root)
	}
	logger.Debug("loaded project", "name", proj.Metadata.Name, "root", proj.Root)

	return &session{
		app:       a,
		cfg:       cfg,
		logger:    logger,
		verbosity: verbosity,
		project:   proj,
	}, nil
}

// loadConfig loads the host configuration. A broken default config file is
// reported as a warning and the defaults are used; an explicit --config file
// must load.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		if a.flags.configPath != "" {
			return nil, actionable(err, "load configuration", a.flags.configPath)
		}
		printLine(a.stderr, "%s%s", WarningStyle.Render("Warning: "), formatErrorForDisplay(err, a.flags.verbose > 0))
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg
	return cfg, nil
}

// containerEngine returns the engine, selecting it on first use from --engine
// or the configured container_engine.
func (s *session) containerEngine() (container.Engine, error) {
	if s.engine != nil {
		return s.engine, nil
	}

	preferred := container.EngineType(s.cfg.ContainerEngine)
	if s.app.flags.engine != "" {
		preferred = container.EngineType(s.app.flags.engine)
	}
	if err := preferred.Validate(); err != nil {
		return nil, actionable(err, "select container engine", preferred.String())
	}

	engine, err := s.app.NewEngine(preferred, s.logger)
	if err != nil {
		return nil, actionable(err, "select container engine", preferred.String())
	}
	s.logger.Debug("using container engine", "engine", engine.Name())
	s.engine = engine
	return engine, nil
}

// environment builds the environment name of the session's project.
// An empty name selects the default environment.
func (s *session) environment(ctx context.Context, name string) (environment.Environment, error) {
	if name == "" {
		name = project.DefaultEnvName
	}

	envCfg, err := s.project.EnvConfig(name)
	if err != nil {
		return nil, actionable(err, "resolve environment", name)
	}
	opts, err := environment.ParseCommonOptions(name, envCfg)
	if err != nil {
		return nil, actionable(err, "resolve environment", name)
	}
	dataDir, err := s.cfg.EnvDataDir(opts.Type, s.project.Metadata.Name)
	if err != nil {
		return nil, actionable(err, "resolve data directory", name)
	}
	engine, err := s.containerEngine()
	if err != nil {
		return nil, err
	}

	hostPython := func() string {
		return s.app.HostPython(ctx, s.cfg.DefaultPython)
	}
	env, err := environment.New(environment.Settings{
		Project:    s.project,
		Name:       name,
		Config:     envCfg,
		DataDir:    dataDir,
		Engine:     engine,
		Verbosity:  s.verbosity,
		Logger:     s.logger,
		Stdin:      s.app.stdin,
		Stdout:     s.app.stdout,
		Stderr:     s.app.stderr,
		Environ:    s.app.environ,
		HostPython: hostPython,
	})
	if err != nil {
		return nil, actionable(err, "resolve environment", name)
	}
	return env, nil
}
