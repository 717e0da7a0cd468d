// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/contenv/contenv/internal/environment"
	"github.com/contenv/contenv/internal/issue"
)

// defaultBuildTargets are built when no --target is given.
var defaultBuildTargets = []string{"sdist", "wheel"}

// defaultBuildRequires is installed into the builder when pyproject.toml
// declares no build-system requirements.
var defaultBuildRequires = []string{"hatchling"}

type buildFlags struct {
	env             string
	targets         []string
	hooksOnly       bool
	noHooks         bool
	clean           bool
	cleanHooksAfter bool
	cleanOnly       bool
}

// newBuildCommand creates the `contenv build` command.
func newBuildCommand(app *App) *cobra.Command {
	var flags buildFlags

	buildCmd := &cobra.Command{
		Use:   "build [DIR]",
		Short: "Build the project's packages inside a builder container",
		Long: `Build the project's packages inside a builder container.

Each target runs in a fresh builder container created from a throwaway image
with the project copied in. Artifacts are written to DIR, which defaults to
the project's dist directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.newSession(ctx)
			if err != nil {
				return err
			}
			env, err := s.environment(ctx, flags.env)
			if err != nil {
				return err
			}

			dir := ""
			if len(args) > 0 {
				if dir, err = filepath.Abs(args[0]); err != nil {
					return err
				}
			}
			deps := s.project.BuildRequires
			if len(deps) == 0 {
				deps = defaultBuildRequires
			}
			return app.build(ctx, env, deps, flags.request(dir))
		},
	}

	f := buildCmd.Flags()
	f.StringVarP(&flags.env, "env", "e", "", "environment whose image and options the builder uses (default \"default\")")
	f.StringArrayVarP(&flags.targets, "target", "t", nil, "build target (repeatable, default sdist and wheel)")
	f.BoolVar(&flags.hooksOnly, "hooks-only", false, "run only the build hooks")
	f.BoolVar(&flags.noHooks, "no-hooks", false, "disable the build hooks")
	f.BoolVarP(&flags.clean, "clean", "c", false, "remove existing artifacts before building")
	f.BoolVar(&flags.cleanHooksAfter, "clean-hooks-after", false, "remove build hook artifacts after each build")
	f.BoolVar(&flags.cleanOnly, "clean-only", false, "remove existing artifacts without building")
	buildCmd.MarkFlagsMutuallyExclusive("hooks-only", "no-hooks")
	return buildCmd
}

// request returns the BuildRequest for the flags, with one entry per target.
func (f buildFlags) request(dir string) environment.BuildRequest {
	targets := f.targets
	if len(targets) == 0 {
		targets = defaultBuildTargets
	}
	return environment.BuildRequest{
		Directory:       dir,
		Targets:         targets,
		HooksOnly:       f.hooksOnly,
		NoHooks:         f.noHooks,
		Clean:           f.clean,
		CleanHooksAfter: f.cleanHooksAfter,
		CleanOnly:       f.cleanOnly,
	}
}

// build runs every target of req in its own builder scope, stopping at the
// first failure.
func (a *App) build(ctx context.Context, env environment.Environment, deps []string, req environment.BuildRequest) error {
	for _, target := range req.Targets {
		a.status("Setting up build environment")

		single := req
		single.Targets = []string{target}
		err := env.BuildEnvironment(ctx, deps, func(scope *environment.BuildScope) error {
			code, err := env.RunBuild(ctx, scope, single)
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitError{
					Code: code,
					Err: issue.NewErrorContext().
						WithOperation("build "+target).
						WithResource(env.Name()).
						WithIssue(issue.PackageBuildFailedId).
						Wrap(fmt.Errorf("build exited with status %d", code)).
						BuildError(),
				}
			}
			return nil
		})
		if err != nil {
			return actionable(err, "build "+target, env.Name())
		}
	}
	return nil
}
