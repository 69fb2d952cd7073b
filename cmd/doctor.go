package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/pkg/migration"
	"github.com/mattsolo1/grove-writer/pkg/service"
	"github.com/mattsolo1/grove-writer/pkg/storage"
)

func NewDoctorCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the stored state for problems",
		Long: `The doctor command reports how the state was loaded, what was repaired
on load, and whether the tree is consistent now.

Problems it can detect and repair on load:
- Nodes listed by two folders or by none
- Children that do not exist
- Books whose root folder is missing
- Word counts that do not match the content`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Running doctor...")
			fmt.Fprintln(out)

			load := s.LastLoad()
			switch load.Source {
			case "default":
				fmt.Fprintln(out, "No saved state was found, started with an empty book.")
			case "recovered":
				fmt.Fprintf(out, "❗ Saved state was unreadable and was set aside as %s.\n", service.CorruptKey)
			default:
				fmt.Fprintln(out, "✓ Saved state loaded.")
			}
			if load.Migration != nil && load.Migration.Changed() {
				fmt.Fprintln(out)
				migration.PrintReport(out, load.Migration)
			}

			issues := 0
			data, err := s.Snapshot()
			if err != nil {
				return err
			}
			if snap, ok := storage.Decode(data); ok {
				for _, issue := range migration.Analyze(snap) {
					issues++
					fmt.Fprintf(out, "❗ %s\n", issue)
				}
			}
			if err := s.Validate(); err != nil {
				issues++
				fmt.Fprintf(out, "❗ %v\n", err)
			}

			fmt.Fprintln(out)
			if issues == 0 {
				fmt.Fprintf(out, "✓ %d books, no issues found\n", len(s.Workspaces()))
			} else {
				fmt.Fprintf(out, "Found %d issues\n", issues)
			}
			return nil
		},
	}
}
