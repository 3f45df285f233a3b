package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete the store and every document in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, closeBackend, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer closeBackend()

			out := cmd.OutOrStdout()
			store, err := backend.FindStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintf(out, "Store %s does not exist, nothing to purge\n", cyan.Render(a.cfg.Store))
				return nil
			}

			if err := backend.DeleteStore(ctx, store); err != nil {
				return fmt.Errorf("delete store %q: %w", a.cfg.Store, err)
			}
			slog.Info("store deleted", "store", a.cfg.Store, "name", store.Name)
			fmt.Fprintf(out, "%s store %s\n", red.Render("Purged"), cyan.Render(a.cfg.Store))
			return nil
		},
	}
}
