// Package commands implements splitctl, the operator CLI for a splitledger
// database. It talks to SQLite directly and needs no running server.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/logging"
)

// options is shared by every subcommand. It is filled in before any RunE.
type options struct {
	dbPath string
	cfg    *config.Config
}

// openStore opens the database, applying pending migrations.
func (o *options) openStore() (*sqlite.SQLiteStore, error) {
	store, err := sqlite.New(o.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", o.dbPath, err)
	}
	return store, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "splitctl",
		Short: "Administer a splitledger database",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, cfg.LogFormat)
			opts.cfg = cfg
			if opts.dbPath == "" {
				opts.dbPath = cfg.DBPath
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default: DB_PATH from config)")

	rootCmd.AddCommand(
		newMigrateCommand(opts),
		newMemberCommand(opts),
		newGroupCommand(opts),
		newExpenseCommand(opts),
		newBalancesCommand(opts),
		newTokenCommand(opts),
	)

	return rootCmd
}
