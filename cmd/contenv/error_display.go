// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/contenv/contenv/internal/config"
	"github.com/contenv/contenv/internal/container"
	"github.com/contenv/contenv/internal/environment"
	"github.com/contenv/contenv/internal/issue"
	"github.com/contenv/contenv/internal/project"
)

// actionable wraps err in an ActionableError describing operation on
// resource and links it to the catalog issue matching its cause. Errors that
// already carry an ActionableError are returned unchanged.
func actionable(err error, operation, resource string) error {
	if err == nil {
		return nil
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	ec := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		Wrap(err)

	var notAvailable *container.ErrEngineNotAvailable
	switch {
	case errors.Is(err, project.ErrDescriptorNotFound):
		ec.WithIssue(issue.ProjectNotFoundId).
			WithSuggestion("Run contenv inside a project directory or pass --project")
	case errors.Is(err, project.ErrMissingName):
		ec.WithIssue(issue.ProjectParseErrorId).
			WithSuggestion("Add a name to the [project] table of pyproject.toml")
	case errors.Is(err, project.ErrUnknownEnvironment):
		ec.WithIssue(issue.UnknownEnvironmentId)
	case errors.Is(err, project.ErrTemplateCycle),
		errors.Is(err, environment.ErrInvalidField),
		errors.Is(err, environment.ErrUnknownType):
		ec.WithIssue(issue.InvalidEnvironmentOptionId)
	case errors.Is(err, environment.ErrInvalidShellCommand):
		ec.WithIssue(issue.ShellCommandInvalidId)
	case errors.As(err, &notAvailable):
		ec.WithIssue(issue.ContainerEngineNotFoundId).
			WithSuggestion("Install Docker or Podman, or select one with --engine")
	case errors.Is(err, os.ErrPermission):
		ec.WithIssue(issue.PermissionDeniedId)
	case errors.Is(err, container.ErrCommandFailed):
		ec.WithIssue(issue.ContainerCommandFailedId).
			WithSuggestion("Re-run with -v to see the engine commands")
	}
	return ec.BuildError()
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderError prints err to w. In verbose mode the catalog issue linked to
// the error is rendered below it.
func (a *App) renderError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	verbose := a.flags.verbose > 0
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if !verbose {
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}
	catalogIssue := ae.CatalogIssue()
	if catalogIssue == nil {
		return
	}
	rendered, renderErr := catalogIssue.Render(a.issueStyle(w))
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

// issueStyle selects the glamour style for catalog issues written to w.
func (a *App) issueStyle(w io.Writer) string {
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return "notty"
	}

	scheme := config.ColorSchemeAuto
	if a.cfg != nil {
		scheme = a.cfg.UI.ColorScheme
	}
	return glamourStyle(scheme, lipgloss.HasDarkBackground)
}

// glamourStyle maps a color scheme to a glamour style name.
func glamourStyle(scheme config.ColorScheme, hasDarkBackground func() bool) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		if hasDarkBackground() {
			return "dark"
		}
		return "light"
	}
}

// printLine writes one formatted line to w.
func printLine(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
