// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vermillion-mc/vermillion/internal/identity"
)

func newIdentityCommand(app *App) *cobra.Command {
	identityCmd := &cobra.Command{
		Use:   "identity",
		Short: "Inspect or reset the persisted pack identities",
		Long: `Inspect or reset the persisted pack identities.

Identities are generated once and stored in uuids.json at the project root.
Keeping that file under version control keeps every build of the add-on
recognized as the same packs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	identityCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the persisted identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showIdentity(cmd, app)
		},
	})

	identityCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Discard the persisted identities",
		Long: `Discard the persisted identities.

The next build generates new identities. Worlds that already reference the
old packs will no longer recognize them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetIdentity(cmd, app)
		},
	})

	return identityCmd
}

func showIdentity(cmd *cobra.Command, app *App) error {
	s, err := app.newSession(cmd.Context())
	if err != nil {
		return app.fail(cmd, err)
	}
	store := identity.NewStore(s.bctx.IdentityFile())
	record, ok, err := store.Load(cmd.Context())
	if err != nil {
		return app.fail(cmd, err)
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Pack identities"))
	fmt.Fprintf(app.stdout, "%s: %s\n\n", KeyStyle.Render("File"), store.Path())
	if !ok {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("(none yet; the next build generates them)"))
		return nil
	}
	for _, slot := range identity.Slots() {
		fmt.Fprintf(app.stdout, "%-24s %s\n", KeyStyle.Render(string(slot)), SuccessStyle.Render(record[slot].String()))
	}
	return nil
}

func resetIdentity(cmd *cobra.Command, app *App) error {
	s, err := app.newSession(cmd.Context())
	if err != nil {
		return app.fail(cmd, err)
	}
	store := identity.NewStore(s.bctx.IdentityFile())
	if err := store.Reset(cmd.Context()); err != nil {
		return app.fail(cmd, err)
	}
	fmt.Fprintf(app.stdout, "%s removed %s\n", successIcon, store.Path())
	return nil
}
