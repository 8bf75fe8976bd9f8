// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/vermillion-mc/vermillion/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vermillion",
		Short: "Compile a Bedrock add-on into behavior and resource packs",
		Long: TitleStyle.Render("vermillion") + SubtitleStyle.Render(" - Bedrock add-on compiler") + `

vermillion reads the add-on descriptor, keeps the pack identities stable in
uuids.json, writes both pack manifests and compiles the add-on scripts.

Run without a subcommand it performs a build, which is how a Regolith
profile invokes it as a filter (ROOT_DIR is read from the environment).

` + SubtitleStyle.Render("Examples:") + `
  vermillion                       Build using ROOT_DIR
  vermillion build --root .        Build the current project
  vermillion manifest              Print the manifests without writing them
  vermillion identity show         Show the persisted pack identities`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.flags.root, "root", "", "project root (default is $ROOT_DIR)")
	flags.StringVar(&app.flags.configFile, "config", "", "config file (default is <root>/vermillion.config.cue)")
	flags.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newIdentityCommand(app))
	rootCmd.AddCommand(newManifestCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))
	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
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
