// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contenv/contenv/internal/config"
)

// newConfigCommand creates the `contenv config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage contenv configuration",
		Long: `Manage contenv configuration.

Configuration is stored in $XDG_CONFIG_HOME/contenv/config.cue
(~/.config/contenv/config.cue by default). Every key can be overridden
with a CONTENV_ environment variable, for example CONTENV_CONTAINER_ENGINE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd.Context())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _, err := config.FilePath(app.loadOptions())
			if err != nil {
				return err
			}
			printLine(app.stdout, "%s", path)
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(ctx context.Context) error {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return actionable(err, "load configuration", a.flags.configPath)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	printLine(a.stdout, "%s", TitleStyle.Render("Current Configuration"))
	printLine(a.stdout, "")

	path, exists, err := config.FilePath(a.loadOptions())
	switch {
	case err != nil || !exists:
		printLine(a.stdout, "%s: %s", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	default:
		printLine(a.stdout, "%s: %s", keyStyle.Render("Config file"), path)
	}
	printLine(a.stdout, "")

	dataDir := cfg.DataDir
	if dataDir == "" {
		if dataDir, err = config.DefaultDataDir(); err != nil {
			return err
		}
	}

	printLine(a.stdout, "%s: %s", keyStyle.Render("container_engine"), valueStyle.Render(cfg.ContainerEngine.String()))
	printLine(a.stdout, "%s: %s", keyStyle.Render("data_dir"), valueStyle.Render(dataDir))
	printLine(a.stdout, "%s: %s", keyStyle.Render("default_python"), valueStyle.Render(cfg.DefaultPython))
	printLine(a.stdout, "")
	printLine(a.stdout, "%s:", keyStyle.Render("ui"))
	printLine(a.stdout, "  verbose: %s", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	printLine(a.stdout, "  color_scheme: %s", valueStyle.Render(cfg.UI.ColorScheme.String()))
	return nil
}

func (a *App) initConfig() error {
	path, created, err := config.CreateDefaultConfig(a.loadOptions())
	if err != nil {
		return actionable(err, "create config", path)
	}
	if !created {
		printLine(a.stdout, "Configuration already exists at %s", path)
		return nil
	}
	printLine(a.stdout, "%s Created default configuration at %s", SuccessStyle.Render("✓"), path)
	return nil
}
