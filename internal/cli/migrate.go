package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abadmin/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
"down" reverts the last applied migration, or everything above --to.
"status" prints the current version and the pending migrations.

Examples:
  abadmin migrate              # Run all pending migrations
  abadmin migrate up --to 3    # Migrate up to version 3
  abadmin migrate down --to 0  # Roll back every migration
  abadmin migrate status`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE:      runMigrate,
}

var migrateTo int

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().IntVar(&migrateTo, "to", -1, "Target version")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	m, err := migrate.New(app.DB.DB, app.Logger)
	if err != nil {
		return err
	}

	direction := "up"
	if len(args) == 1 {
		direction = args[0]
	}

	switch direction {
	case "status":
		st, err := m.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Current version: %d\n", st.Current)
		fmt.Fprintf(out, "Latest version:  %d\n", st.Latest)
		if st.Dirty {
			fmt.Fprintln(out, "State: dirty, manual intervention required")
		}
		if len(st.Pending) == 0 {
			fmt.Fprintln(out, "No pending migrations")
			return nil
		}
		fmt.Fprintln(out, "Pending:")
		for _, mig := range st.Pending {
			fmt.Fprintf(out, "  %03d_%s\n", mig.Version, mig.Name)
		}
		return nil

	case "down":
		target := migrateTo
		if target < 0 {
			current, _, err := m.CurrentVersion(ctx)
			if err != nil {
				return err
			}
			if current == 0 {
				fmt.Fprintln(out, "No migrations to revert")
				return nil
			}
			target = current - 1
		}
		n, err := m.DownTo(ctx, target)
		if err != nil {
			return err
		}
		current, _, err := m.CurrentVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Reverted %d migrations, now at version %d\n", n, current)
		return nil

	default:
		var n int
		if migrateTo >= 0 {
			n, err = m.UpTo(ctx, migrateTo)
		} else {
			n, err = m.Up(ctx)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(out, "No migrations to run")
			return nil
		}
		current, _, err := m.CurrentVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Migrated to version %d (%d migrations applied)\n", current, n)
		return nil
	}
}
