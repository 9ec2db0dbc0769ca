package commands

import (
	"fmt"

	"github.com/leapstack-labs/noticeboard/pkg/store"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Manage the database schema",
		Long: `Apply, roll back or inspect the embedded schema migrations.

The migration set follows database.dialect: postgres and cockroachdb share the
PostgreSQL set, sqlite has its own.`,
		Example: `  # Apply all pending migrations
  noticeboard migrate

  # Roll back the most recent migration
  noticeboard migrate down

  # Show applied and pending migrations
  noticeboard migrate status`,
		ValidArgs: []string{"up", "down", "status"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			return runMigrate(cmd, direction)
		},
	}
	return cmd
}

func runMigrate(cmd *cobra.Command, direction string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	switch direction {
	case "up":
		err = store.Migrate(cmdCtx.DB, cmdCtx.Dialect)
	case "down":
		err = store.MigrateDown(cmdCtx.DB, cmdCtx.Dialect)
	case "status":
		return store.MigrationStatus(cmdCtx.DB, cmdCtx.Dialect)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil {
		return err
	}

	version, err := store.MigrationVersion(cmdCtx.DB, cmdCtx.Dialect)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
	return nil
}
