package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/margin/internal/catalog"
	"github.com/Simplici0/margin/internal/logging"
	"github.com/Simplici0/margin/internal/migrations"
	"github.com/Simplici0/margin/internal/seed"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply catalog database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.Up(ctx, database); err != nil {
				return err
			}
			version, err := migrations.Version(ctx, database)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
			return nil
		},
	}
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert built-in catalog defaults that are missing",
		Long: `Insert the built-in list prices and rates into the catalog database.

Existing rows are never overwritten, so operator edits survive a reseed.
Migrations are applied first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.Up(ctx, database); err != nil {
				return err
			}
			stats, err := seed.Run(ctx, database, catalog.Builtin())
			if err != nil {
				return err
			}
			logging.Info("catalog seeded", zap.Int("inserts", stats.Inserts))
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d row(s)\n", stats.Inserts)
			return nil
		},
	}
}
