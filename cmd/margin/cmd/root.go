// Package cmd provides the CLI commands for margin.
package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Simplici0/margin/internal/catalog"
	"github.com/Simplici0/margin/internal/config"
	"github.com/Simplici0/margin/internal/db"
	"github.com/Simplici0/margin/internal/logging"
	"github.com/Simplici0/margin/internal/profile"
)

// version is set at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

type options struct {
	cfg          config.Config
	dbPath       string
	profilesPath string
	verbose      bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "margin",
		Short: "Check subscription quotes against a minimum margin",
		Long: `margin computes revenue, delivery cost and margin for Plus and Premium
subscription quotes and checks them against a minimum margin.

Examples:
  margin quote --plan premium --cycle yearly --discount 10 --accounts 3
  margin quote --plan plus --format json
  margin catalog --db ./margin.db`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if opts.verbose {
				cfg.Logging.Level = "debug"
			}
			if err := logging.Initialize(cfg.Logging); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			if opts.profilesPath == "" {
				opts.profilesPath = cfg.ProfilesPath
			}
			opts.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "catalog database (default: built-in catalog, or DB_PATH for migrate/seed)")
	root.PersistentFlags().StringVar(&opts.profilesPath, "profiles", "", "extra profile file (HCL)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newQuoteCmd(opts),
		newCatalogCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newProfilesCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// openDB opens --db, falling back to DB_PATH.
func (o *options) openDB(ctx context.Context) (*sql.DB, error) {
	path := o.dbPath
	if path == "" {
		path = o.cfg.DBPath
	}
	return db.Open(ctx, path)
}

// defaults returns the catalog from --db when given, the built-in one otherwise.
func (o *options) defaults(ctx context.Context) (catalog.Defaults, error) {
	if o.dbPath == "" {
		return catalog.Builtin(), nil
	}
	database, err := db.Open(ctx, o.dbPath)
	if err != nil {
		return catalog.Defaults{}, err
	}
	defer database.Close()
	return catalog.NewStore(database).Load(ctx)
}

func (o *options) profiles() (*profile.Set, error) {
	return profile.Load(o.profilesPath)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "margin version %s\n", version)
		},
	}
}
