// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vermillion-mc/vermillion/internal/pipeline"
)

func newBuildCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Export the add-on into the staging packs",
		Long: `Export the add-on into the staging packs.

The build settles pack identities first, composes both manifests, compiles
scripts when the descriptor exports them and finally writes each included
pack. The process exits non-zero when scripts were requested but no entry
module could be produced; the manifests are written regardless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app)
		},
	}
}

func runBuild(cmd *cobra.Command, app *App) error {
	s, err := app.newSession(cmd.Context())
	if err != nil {
		return app.fail(cmd, err)
	}
	addon, err := s.loadDescriptor()
	if err != nil {
		return app.fail(cmd, err)
	}

	report, err := app.newPipeline(s).Run(cmd.Context(), s.bctx, addon)
	if report != nil {
		renderReport(app.stdout, s.bctx.Root(), report)
	}
	if err != nil {
		return app.fail(cmd, err)
	}
	return nil
}

// renderReport prints the outcome of a run with paths relative to root.
func renderReport(w io.Writer, root string, report *pipeline.Report) {
	rel := func(p string) string {
		if r, err := filepath.Rel(root, p); err == nil {
			return r
		}
		return p
	}

	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Add-on exported"), SubtitleStyle.Render(report.Version))
	if report.IdentityCreated {
		fmt.Fprintf(w, "%s %s\n", warningIcon, "New pack identities were generated; commit uuids.json")
	}

	if s := report.Scripts; s != nil {
		compiled := len(s.Files) - len(s.Failures)
		fmt.Fprintf(w, "%s %d of %d script(s) compiled in %s\n", successIcon, compiled, len(s.Files), s.Elapsed.Round(time.Millisecond))
		for _, f := range s.Failures {
			fmt.Fprintf(w, "  %s %s: %v\n", errorIcon, KeyStyle.Render(f.Source), f.Err)
		}
		switch {
		case s.Bundled:
			fmt.Fprintf(w, "%s bundled into %s\n", successIcon, KeyStyle.Render(s.Entry))
		case s.BundleErr != nil:
			fmt.Fprintf(w, "%s bundling failed, using unbundled output: %v\n", warningIcon, s.BundleErr)
		}
		if s.Viable {
			fmt.Fprintf(w, "%s script entry %s\n", successIcon, KeyStyle.Render(s.Entry))
		} else {
			fmt.Fprintf(w, "%s no script entry was produced\n", errorIcon)
		}
	}

	if a := report.Assembly; a != nil {
		for _, m := range a.Manifests {
			fmt.Fprintf(w, "%s wrote %s\n", successIcon, KeyStyle.Render(rel(m)))
		}
		for _, asset := range a.Assets {
			fmt.Fprintf(w, "%s copied %s\n", successIcon, SubtitleStyle.Render(rel(asset)))
		}
	}
}
