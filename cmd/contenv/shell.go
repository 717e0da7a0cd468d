// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/contenv/contenv/internal/environment"
)

// newShellCommand creates the `contenv shell` command.
func newShellCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell [ENV]",
		Short: "Enter a shell inside an environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnvironment(cmd.Context(), envArg(args), app.enterShell)
		},
	}
}

func (a *App) enterShell(ctx context.Context, env environment.Environment) error {
	if err := a.prepareEnvironment(ctx, env); err != nil {
		return err
	}

	code, err := env.EnterShell(ctx)
	if err != nil {
		return actionable(err, "enter shell", env.Name())
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
