package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/pkg/service"
	"github.com/mattsolo1/grove-writer/pkg/tree"
	"github.com/mattsolo1/grove-writer/pkg/workspace"
)

func NewBookCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "book",
		Aliases: []string{"books"},
		Short:   "Manage books",
		Long:    `Create, list, rename, switch and delete books. Each book owns one root folder.`,
	}

	cmd.AddCommand(
		newBookNewCmd(svc),
		newBookListCmd(svc),
		newBookRenameCmd(svc),
		newBookStatusCmd(svc),
		newBookSwitchCmd(svc),
		newBookDeleteCmd(svc),
	)

	return cmd
}

func newBookNewCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "new [title]",
		Short: "Create a book and make it active",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := (*svc).CreateWorkspace(context.Background(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created book %q (%s)\n", w.Title, w.ID)
			return nil
		},
	}
}

type bookRow struct {
	workspace.Workspace
	Active    bool `json:"active"`
	Files     int  `json:"files"`
	WordCount int  `json:"wordCount"`
}

func newBookListCmd(svc **service.Service) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List books",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			active := s.Session().ActiveWorkspaceID

			var rows []bookRow
			for _, w := range s.Workspaces() {
				row := bookRow{Workspace: w, Active: w.ID == active}
				if root, err := s.Tree(w.ID); err == nil && root != nil {
					row.WordCount = root.WordCount
					row.Files = tree.CountItems(root) - countFolders(root)
				}
				rows = append(rows, row)
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tTITLE\tSTATUS\tFILES\tWORDS")
			for _, r := range rows {
				marker := ""
				if r.Active {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n", marker, shortID(r.ID), r.Title, r.Status, r.Files, r.WordCount)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func countFolders(it *tree.Item) int {
	if it == nil || !it.IsDir() {
		return 0
	}
	n := 1
	for _, c := range it.Children {
		n += countFolders(c)
	}
	return n
}

// resolveBook accepts a full id, a unique id prefix or a unique title.
func resolveBook(s *service.Service, ref string) (workspace.Workspace, error) {
	var matches []workspace.Workspace
	for _, w := range s.Workspaces() {
		if w.ID == ref {
			return w, nil
		}
		if strings.HasPrefix(w.ID, ref) || strings.EqualFold(w.Title, ref) {
			matches = append(matches, w)
		}
	}
	switch len(matches) {
	case 0:
		return workspace.Workspace{}, fmt.Errorf("no book matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return workspace.Workspace{}, fmt.Errorf("%q matches %d books, use the id", ref, len(matches))
	}
}

func newBookRenameCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <book> <title>",
		Short: "Rename a book",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveBook(*svc, args[0])
			if err != nil {
				return err
			}
			return (*svc).RenameWorkspace(context.Background(), w.ID, strings.Join(args[1:], " "))
		},
	}
}

func newBookStatusCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "status <book> <Drafting|Editing|Completed|Planning>",
		Short: "Set the status of a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveBook(*svc, args[0])
			if err != nil {
				return err
			}
			status, err := workspace.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return (*svc).SetWorkspaceStatus(context.Background(), w.ID, status)
		},
	}
}

func newBookSwitchCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <book>",
		Short: "Make a book the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveBook(*svc, args[0])
			if err != nil {
				return err
			}
			if err := (*svc).SwitchWorkspace(context.Background(), w.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to %q\n", w.Title)
			return nil
		},
	}
}

func newBookDeleteCmd(svc **service.Service) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <book>",
		Aliases: []string{"delete"},
		Short:   "Delete a book and everything in it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveBook(*svc, args[0])
			if err != nil {
				return err
			}
			ok, err := confirmAction(cmd, yes, fmt.Sprintf("Delete book %q and all of its files?", w.Title))
			if err != nil || !ok {
				return err
			}
			if err := (*svc).DeleteWorkspace(context.Background(), w.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted book %q\n", w.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
