package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

func NewSearchCmd(svc **service.Service) *cobra.Command {
	var (
		searchAll      bool
		searchCategory string
		searchLimit    int
		jsonOutput     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search files",
		Long: `Search the titles, content and tags of files.

Examples:
  gw search "dragon"              # Search in the active book
  gw search "todo" --all          # Search all books
  gw search "villain" -c character`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			query := strings.Join(args, " ")

			var opts []service.SearchOption
			if searchAll {
				opts = append(opts, service.AllWorkspaces())
			}
			if searchCategory != "" {
				opts = append(opts, service.InCategory(models.Category(strings.ToLower(searchCategory))))
			}
			opts = append(opts, service.WithLimit(searchLimit))

			results, err := s.Search(context.Background(), query, opts...)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), results)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results found")
				return nil
			}

			books := make(map[string]string)
			for _, w := range s.Workspaces() {
				books[w.ID] = w.Title
			}

			fmt.Fprintf(out, "Found %d results:\n\n", len(results))
			for i, r := range results {
				fmt.Fprintf(out, "%d. %s  (%s, %d words)\n", i+1, r.Title, r.Category, r.WordCount)
				fmt.Fprintf(out, "   %s", strings.Join(s.Path(r.NodeID), " / "))
				if searchAll {
					fmt.Fprintf(out, "  [%s]", books[r.WorkspaceID])
				}
				fmt.Fprintln(out)
				if r.Snippet != "" {
					fmt.Fprintf(out, "   %s\n", strings.ReplaceAll(r.Snippet, "\n", " "))
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&searchAll, "all", false, "Search all books")
	cmd.Flags().StringVarP(&searchCategory, "category", "c", "", "Filter by category")
	cmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum results")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
