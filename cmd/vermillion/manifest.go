// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vermillion-mc/vermillion/internal/manifest"
)

func newManifestCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Print the manifests a build would write",
		Long: `Print the manifests a build would write, without writing anything.

The script module entry shown is the default one; the real entry is only
known after scripts are compiled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return previewManifests(cmd, app)
		},
	}
}

func previewManifests(cmd *cobra.Command, app *App) error {
	s, err := app.newSession(cmd.Context())
	if err != nil {
		return app.fail(cmd, err)
	}
	addon, err := s.loadDescriptor()
	if err != nil {
		return app.fail(cmd, err)
	}

	pair, persisted, err := app.newPipeline(s).Preview(cmd.Context(), addon)
	if err != nil {
		return app.fail(cmd, err)
	}
	if !persisted {
		fmt.Fprintf(app.stderr, "%s no identities are persisted yet; the identifiers below are temporary\n", warningIcon)
	}

	printDoc := func(title string, doc *manifest.Document) error {
		data, err := doc.Encode()
		if err != nil {
			return err
		}
		fmt.Fprintln(app.stdout, TitleStyle.Render(title))
		fmt.Fprintln(app.stdout, string(data))
		return nil
	}
	if pair.Packs.Behavior {
		if err := printDoc("Behavior pack", pair.Behavior); err != nil {
			return app.fail(cmd, err)
		}
	}
	if pair.Packs.Resource {
		if err := printDoc("Resource pack", pair.Resource); err != nil {
			return app.fail(cmd, err)
		}
	}
	return nil
}
