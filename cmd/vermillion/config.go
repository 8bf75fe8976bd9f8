// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vermillion-mc/vermillion/internal/config"
	"github.com/vermillion-mc/vermillion/pkg/types"
)

// newConfigCommand creates the `vermillion config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect vermillion configuration",
		Long: `Inspect vermillion configuration.

Configuration is read from vermillion.config.cue at the project root (or the
file given with --config) and from VERMILLION_* environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	s, err := app.newSession(cmd.Context())
	if err != nil {
		return app.fail(cmd, err)
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	path := config.Resolve(config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(app.flags.configFile),
		RootDir:        types.FilesystemPath(s.bctx.Root()),
	})
	if path == "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render("Config file"), path)
	}
	fmt.Fprintln(app.stdout)

	rows := []struct{ key, value string }{
		{"log_level", s.cfg.LogLevel.String()},
		{"concurrency", strconv.Itoa(s.cfg.Workers())},
		{"root", s.bctx.Root()},
		{"descriptor", s.bctx.DescriptorFile()},
		{"identity_file", s.bctx.IdentityFile()},
		{"behavior_pack", s.bctx.BehaviorPack()},
		{"resource_pack", s.bctx.ResourcePack()},
		{"script_staging", s.bctx.DataRoot()},
	}
	for _, r := range rows {
		fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render(r.key), SuccessStyle.Render(r.value))
	}
	return nil
}
