package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/pkg/migration"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

func NewMigrateCmd(svc **service.Service) *cobra.Command {
	var (
		migrateDryRun  bool
		migrateVerbose bool
		yes            bool
	)

	cmd := &cobra.Command{
		Use:   "migrate <state.json>",
		Short: "Load a saved state file, upgrading older layouts",
		Long: `Read a state file written by gw backup or by an older version (a single
book with a flat file map), repair it and replace the current state with it.

Examples:
  gw migrate old-state.json --dry-run     # Show what would be repaired
  gw migrate backup.json --yes            # Replace the current state`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			m := migration.NewMigrator(migration.MigrationOptions{Verbose: migrateVerbose}, out, s.Logger.WithField("component", "cmd"))
			snap, err := m.Migrate(data)
			m.Complete()
			migration.PrintReport(out, m.GetReport())
			if err != nil {
				return err
			}
			if migrateDryRun {
				return nil
			}

			ok, err := confirmAction(cmd, yes, fmt.Sprintf("Replace all current books with the %d books in %s?", len(snap.Workspaces), args[0]))
			if err != nil || !ok {
				return err
			}
			if err := s.RestoreSnapshot(context.Background(), snap); err != nil {
				return err
			}
			fmt.Fprintln(out, "State replaced")
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Only report, do not replace the current state")
	cmd.Flags().BoolVar(&migrateVerbose, "report", false, "List every repaired issue")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func NewBackupCmd(svc **service.Service) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write the whole state as JSON",
		Long:  `Write every book, node and the session as JSON. gw migrate reads it back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := (*svc).Snapshot()
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Backed up to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
