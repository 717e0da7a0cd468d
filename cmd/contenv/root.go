// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand creates the contenv command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "contenv",
		Short: "Run Python projects in container environments",
		Long: TitleStyle.Render("contenv") + SubtitleStyle.Render(" - Python project environments backed by containers") + `

contenv creates one long-lived Docker or Podman container per project
environment, installs the project into it and runs commands, shells and
package builds inside it.

Environments are declared in pyproject.toml under [tool.contenv.envs.<name>].

` + SubtitleStyle.Render("Examples:") + `
  contenv env create          Create the default environment
  contenv run -- pytest -x    Run a command in the default environment
  contenv shell test          Enter a shell in the 'test' environment
  contenv build -t wheel      Build a wheel inside a builder container`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&app.flags.verbose, "verbose", "v", "increase verbosity (repeatable)")
	flags.CountVarP(&app.flags.quiet, "quiet", "q", "decrease verbosity (repeatable)")
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/contenv/config.cue)")
	flags.StringVarP(&app.flags.projectDir, "project", "p", "", "project directory (default is the nearest directory with a pyproject.toml)")
	flags.StringVar(&app.flags.engine, "engine", "", "container engine to use (docker, podman or auto)")

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(
		newEnvCommand(app),
		newRunCommand(app),
		newShellCommand(app),
		newBuildCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// Execute builds the production App and runs the root command. It exits the
// process with the exit code of a failed command.
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			app.renderError(w, err)
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
