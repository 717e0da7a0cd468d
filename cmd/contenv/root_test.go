// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCommand(NewApp(Dependencies{}))
	for _, name := range []string{"env", "run", "shell", "build", "config"} {
		if c, _, err := rootCmd.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"verbose", "quiet", "config", "project", "engine"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s not registered", flag)
		}
	}
}

func TestApp_Verbosity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		verbose       int
		quiet         int
		configVerbose bool
		want          int
		wantLevel     log.Level
	}{
		{"default", 0, 0, false, 0, log.InfoLevel},
		{"verbose flag", 2, 0, false, 2, log.DebugLevel},
		{"quiet flag", 0, 1, false, -1, log.WarnLevel},
		{"config verbose", 0, 0, true, 1, log.DebugLevel},
		{"flags cancel out", 1, 1, false, 0, log.InfoLevel},
		{"quiet wins over config", 0, 1, true, -1, log.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ta := newTestApp(t, &stubEngine{})
			ta.app.flags.verbose = tt.verbose
			ta.app.flags.quiet = tt.quiet
			cfg, _ := ta.app.Config.Load(t.Context(), ta.app.loadOptions())
			cfg.UI.Verbose = tt.configVerbose

			got := ta.app.verbosity(cfg)
			if got != tt.want {
				t.Errorf("verbosity() = %d, want %d", got, tt.want)
			}
			if level := ta.app.newLogger(got).GetLevel(); level != tt.wantLevel {
				t.Errorf("logger level = %v, want %v", level, tt.wantLevel)
			}
		})
	}
}
