// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/contenv/contenv/internal/container"
	"github.com/contenv/contenv/internal/environment"
)

// describer is implemented by environments that can report their resolved state.
type describer interface {
	Describe(ctx context.Context) (*environment.Description, error)
}

// newEnvCommand creates the `contenv env` command tree.
func newEnvCommand(app *App) *cobra.Command {
	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Manage project environments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	envCmd.AddCommand(&cobra.Command{
		Use:   "create [ENV]",
		Short: "Create an environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnvironment(cmd.Context(), envArg(args), app.envCreate)
		},
	})

	envCmd.AddCommand(&cobra.Command{
		Use:   "remove [ENV]",
		Short: "Remove an environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnvironment(cmd.Context(), envArg(args), app.envRemove)
		},
	})

	envCmd.AddCommand(&cobra.Command{
		Use:   "find [ENV]",
		Short: "Print the location of an environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnvironment(cmd.Context(), envArg(args), func(_ context.Context, env environment.Environment) error {
				printLine(app.stdout, "%s", env.Find())
				return nil
			})
		},
	})

	envCmd.AddCommand(&cobra.Command{
		Use:   "show [ENV]",
		Short: "Show the resolved configuration and state of an environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnvironment(cmd.Context(), envArg(args), app.envShow)
		},
	})

	return envCmd
}

// envArg returns the optional environment name argument.
func envArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// withEnvironment opens a session, resolves environment name and calls fn with it.
func (a *App) withEnvironment(ctx context.Context, name string, fn func(context.Context, environment.Environment) error) error {
	s, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	env, err := s.environment(ctx, name)
	if err != nil {
		return err
	}
	return fn(ctx, env)
}

func (a *App) envCreate(ctx context.Context, env environment.Environment) error {
	created, err := a.createEnvironment(ctx, env)
	if err != nil {
		return err
	}
	if !created {
		a.status("Environment `%s` already exists", env.Name())
		return nil
	}
	return a.syncDependencies(ctx, env)
}

func (a *App) envRemove(ctx context.Context, env environment.Environment) error {
	exists, err := env.Exists(ctx)
	if err != nil {
		return actionable(err, "check environment", env.Name())
	}
	if !exists {
		a.status("Environment `%s` does not exist", env.Name())
		return nil
	}
	// The container can disappear between the check and the removal.
	if err := env.Remove(ctx); container.IsNotFound(err) {
		a.status("Environment `%s` does not exist", env.Name())
		return nil
	} else if err != nil {
		return actionable(err, "remove environment", env.Name())
	}
	return nil
}

func (a *App) envShow(ctx context.Context, env environment.Environment) error {
	var report any = env.Options()
	if d, ok := env.(describer); ok {
		desc, err := d.Describe(ctx)
		if err != nil {
			return actionable(err, "describe environment", env.Name())
		}
		report = desc
	}

	enc := yaml.NewEncoder(a.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

// createEnvironment creates env and installs the project into it unless it
// already exists. It reports whether the environment was created.
func (a *App) createEnvironment(ctx context.Context, env environment.Environment) (bool, error) {
	exists, err := env.Exists(ctx)
	if err != nil {
		return false, actionable(err, "check environment", env.Name())
	}
	if exists {
		return false, nil
	}

	a.status("Creating environment: %s", env.Name())
	if err := env.Create(ctx); err != nil {
		return false, actionable(err, "create environment", env.Name())
	}

	opts := env.Options()
	if opts.SkipInstall {
		return true, nil
	}
	if opts.DevMode {
		a.status("Installing project in development mode")
		err = env.InstallProjectDevMode(ctx)
	} else {
		a.status("Installing project")
		err = env.InstallProject(ctx)
	}
	return true, actionable(err, "install project", env.Name())
}

// syncDependencies installs the dependencies of env when they are not satisfied.
func (a *App) syncDependencies(ctx context.Context, env environment.Environment) error {
	inSync, err := env.DependenciesInSync(ctx)
	if err != nil {
		return actionable(err, "check dependencies", env.Name())
	}
	if inSync {
		return nil
	}
	a.status("Syncing dependencies")
	return actionable(env.SyncDependencies(ctx), "sync dependencies", env.Name())
}

// prepareEnvironment creates env when missing and brings its dependencies in sync.
func (a *App) prepareEnvironment(ctx context.Context, env environment.Environment) error {
	if _, err := a.createEnvironment(ctx, env); err != nil {
		return err
	}
	return a.syncDependencies(ctx, env)
}
