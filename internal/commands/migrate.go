package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

func newMigrateCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Apply, roll back or inspect schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) > 0 {
				action = args[0]
			}
			return runMigrate(cmd, opts.dbPath, action)
		},
	}
	return cmd
}

func runMigrate(cmd *cobra.Command, dbPath, action string) error {
	out := cmd.OutOrStdout()

	switch action {
	case "up":
		if err := sqlite.MigrateUp(dbPath); err != nil {
			return err
		}
	case "down":
		if err := sqlite.MigrateDown(dbPath); err != nil {
			return err
		}
	}

	version, dirty, err := sqlite.MigrationVersion(dbPath)
	if err != nil {
		return err
	}
	if dirty {
		fmt.Fprintf(out, "schema version %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(out, "schema version %d\n", version)
	return nil
}
