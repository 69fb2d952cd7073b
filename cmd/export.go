package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/pkg/export"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

func NewExportCmd(svc **service.Service) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [node]",
		Short: "Export a book, folder or file",
		Long: fmt.Sprintf(`Export a node and everything below it in reading order. Without a
node the active book is exported.

Formats: %s

Examples:
  gw export --format md -o book.md
  gw export Drafts --format json`, strings.Join(export.Formats, ", ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			var id string
			if len(args) == 1 {
				var err error
				if id, err = s.ResolveNode(args[0]); err != nil {
					return err
				}
			}

			if output == "" {
				_, err := s.Export(id, format, cmd.OutOrStdout())
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()

			w := bufio.NewWriter(f)
			if _, err := s.Export(id, format, w); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "Output format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
