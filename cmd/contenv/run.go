// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/contenv/contenv/internal/environment"
)

// newRunCommand creates the `contenv run` command.
func newRunCommand(app *App) *cobra.Command {
	var envName string

	runCmd := &cobra.Command{
		Use:   "run [-e ENV] -- ARGS...",
		Short: "Run a command inside an environment",
		Long: `Run a command inside an environment.

The environment is created when it does not exist yet and its dependencies
are synced when they are out of date. The arguments are quoted for a POSIX
shell and run through sh -c inside the container; contenv exits with the
command's exit code.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := environment.JoinShellArgs(args)
			if err != nil {
				return actionable(err, "quote command", "")
			}
			return app.withEnvironment(cmd.Context(), envName, func(ctx context.Context, env environment.Environment) error {
				return app.runCommand(ctx, env, command)
			})
		},
	}
	runCmd.Flags().SetInterspersed(false)
	runCmd.Flags().StringVarP(&envName, "env", "e", "", "environment to run in (default \"default\")")
	return runCmd
}

func (a *App) runCommand(ctx context.Context, env environment.Environment, command string) error {
	if err := a.prepareEnvironment(ctx, env); err != nil {
		return err
	}

	codes, err := env.RunShellCommands(ctx, []string{command})
	if err != nil {
		return actionable(err, "run command", env.Name())
	}
	if n := len(codes); n > 0 && codes[n-1] != 0 {
		return &ExitError{Code: codes[n-1]}
	}
	return nil
}
