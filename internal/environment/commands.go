// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// pipInstallCommand returns the pip invocation used for every install. The
// verbosity flag is one step quieter than the CLI verbosity.
func pipInstallCommand(verbosity int, args ...string) []string {
	cmd := []string{"python", "-u", "-m", "pip", "install", "--disable-pip-version-check", "--no-python-version-warning"}
	if flag := verbosityFlag(verbosity, -1); flag != "" {
		cmd = append(cmd, flag)
	}
	return append(cmd, args...)
}

// verbosityFlag maps a verbosity level to -q/-qq/-qqq or -v/-vv/-vvv.
func verbosityFlag(verbosity, adjustment int) string {
	level := verbosity + adjustment
	switch {
	case level < 0:
		return "-" + strings.Repeat("q", min(-level, 3))
	case level > 0:
		return "-" + strings.Repeat("v", min(level, 3))
	default:
		return ""
	}
}

// withFeatures appends the optional dependency groups to an install target.
func withFeatures(target string, features []string) string {
	if len(features) == 0 {
		return target
	}
	return target + "[" + strings.Join(features, ",") + "]"
}

func dependenciesSyncedCommand(dependencies []string) []string {
	return append([]string{"hatchling", "dep", "synced", "-p", "python"}, dependencies...)
}

func buildCommand(req BuildRequest) []string {
	cmd := []string{"python", "-u", "-m", "hatchling", "build"}
	for _, t := range req.Targets {
		cmd = append(cmd, "--target", t)
	}
	flags := []struct {
		set  bool
		flag string
	}{
		{req.HooksOnly, "--hooks-only"},
		{req.NoHooks, "--no-hooks"},
		{req.Clean, "--clean"},
		{req.CleanHooksAfter, "--clean-hooks-after"},
		{req.CleanOnly, "--clean-only"},
	}
	for _, f := range flags {
		if f.set {
			cmd = append(cmd, f.flag)
		}
	}
	return cmd
}

// shellCommand wraps a command line for execution by the container's sh.
func shellCommand(command string) []string {
	return []string{"sh", "-c", command}
}

// JoinShellArgs quotes each argument for a POSIX shell and joins them with spaces.
// Arguments holding control characters such as newlines or tabs are wrapped
// in single quotes verbatim; only NUL bytes cannot be passed.
func JoinShellArgs(args []string) (string, error) {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		q, err := syntax.Quote(a, syntax.LangPOSIX)
		if err != nil {
			if strings.ContainsRune(a, 0) {
				return "", fmt.Errorf("cannot quote argument %q: %w", a, err)
			}
			q = singleQuote(a)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}

func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ValidateShellCommand reports a syntax error in command before it is sent
// to the container.
func ValidateShellCommand(command string) error {
	if _, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(command), ""); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidShellCommand, command, err)
	}
	return nil
}
