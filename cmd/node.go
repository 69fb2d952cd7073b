package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/service"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

func NewNodeCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Create, edit and rearrange folders and files",
		Long: `Operate on the folders and files of a book.

Nodes can be referred to by id, by a unique id prefix, or by a title that is
unique in the active book.`,
	}

	cmd.AddCommand(
		newNodeNewCmd(svc),
		newNodeShowCmd(svc),
		newNodeRenameCmd(svc),
		newNodeDeleteCmd(svc),
		newNodeMoveCmd(svc),
		newNodeToggleCmd(svc),
		newNodeTagsCmd(svc),
		newNodeCategoryCmd(svc),
		newNodeWriteCmd(svc),
	)

	return cmd
}

func resolveParent(s *service.Service, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	return s.ResolveNode(ref)
}

func newNodeNewCmd(svc **service.Service) *cobra.Command {
	var (
		folder bool
		parent string
	)

	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a file (or a folder with --folder)",
		Long: `Create a file or folder as the last child of --parent, or of the
active book's root. A new file becomes the active file.

Examples:
  gw node new "Chapter 1" --parent Drafts
  gw node new --folder Characters`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			parentID, err := resolveParent(s, parent)
			if err != nil {
				return err
			}
			kind := models.KindFile
			if folder {
				kind = models.KindFolder
			}
			id, err := s.CreateNode(context.Background(), kind, parentID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&folder, "folder", false, "Create a folder")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Parent folder (default: root of the active book)")
	return cmd
}

func newNodeShowCmd(svc **service.Service) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <node>",
		Short: "Print a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			id, err := s.ResolveNode(args[0])
			if err != nil {
				return err
			}
			n, err := s.Node(id)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), n)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, %s)\n", strings.Join(s.Path(id), " / "), n.Kind, n.ID)
			if n.IsFolder() {
				fmt.Fprintf(out, "items: %d  words: %d\n", len(n.Children), s.WordCount(id))
				return nil
			}
			fmt.Fprintf(out, "category: %s  words: %d  tags: %s\n\n", n.Category, n.WordCount, strings.Join(n.Tags, ", "))
			fmt.Fprintln(out, n.Content)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func newNodeRenameCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <node> <title>",
		Short: "Rename a folder or file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			id, err := s.ResolveNode(args[0])
			if err != nil {
				return err
			}
			return s.RenameNode(context.Background(), id, strings.Join(args[1:], " "))
		},
	}
}

func newNodeDeleteCmd(svc **service.Service) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <node>",
		Aliases: []string{"delete"},
		Short:   "Delete a node and everything below it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			id, err := s.ResolveNode(args[0])
			if err != nil {
				return err
			}
			n, err := s.Node(id)
			if err != nil {
				return err
			}
			prompt := fmt.Sprintf("Delete file %q?", n.Title)
			if n.IsFolder() {
				prompt = fmt.Sprintf("Delete folder %q and everything in it?", n.Title)
			}
			ok, err := confirmAction(cmd, yes, prompt)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			change, err := s.DeleteNode(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d node(s)\n", len(change.Removed))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newNodeMoveCmd(svc **service.Service) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "mv <node> <folder>",
		Short: "Move a node into a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			id, err := s.ResolveNode(args[0])
			if err != nil {
				return err
			}
			parentID, err := s.ResolveNode(args[1])
			if err != nil {
				return err
			}
			var opts []tree.MoveOption
			if cmd.Flags().Changed("index") {
				opts = append(opts, tree.AtIndex(index))
			}
			_, err = s.MoveNode(context.Background(), id, parentID, opts...)
			return err
		},
	}

	cmd.Flags().IntVarP(&index, "index", "i", -1, "Position among the folder's children (default: last)")
	return cmd
}

func newNodeToggleCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <folder>",
		Short: "Open or close a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			id, err := s.ResolveNode(args[0])
			if err != nil {
				return err
			}
			state := "closed"
			if s.ToggleFolder(context.Background(), id) {
				state = "open"
			}
			fmt.Fprintln(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func newNodeTagsCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <file> [tag...]",
		Short: "Replace the tags of a file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			id, err := s.ResolveNode(args[0])
			if err != nil {
				return err
			}
			var tags []string
			for _, a := range args[1:] {
				tags = append(tags, strings.Split(a, ",")...)
			}
			return s.UpdateTags(context.Background(), id, tags)
		},
	}
}

func newNodeCategoryCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "category <file> <idea|planning|character|chapter|other>",
		Short: "Set the category of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			id, err := s.ResolveNode(args[0])
			if err != nil {
				return err
			}
			return s.UpdateCategory(context.Background(), id, models.Category(strings.ToLower(args[1])))
		},
	}
}

func newNodeWriteCmd(svc **service.Service) *cobra.Command {
	var (
		fromFile string
		appendTo bool
	)

	cmd := &cobra.Command{
		Use:   "write <file> [text]",
		Short: "Replace the content of a file",
		Long: `Replace the content of a file with the given text, the content of
--from, or standard input.

Examples:
  gw node write "Chapter 1" "It was a dark and stormy night."
  gw node write "Chapter 1" --from draft.md
  echo "More." | gw node write "Chapter 1" --append`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			id, err := s.ResolveNode(args[0])
			if err != nil {
				return err
			}

			var text string
			switch {
			case len(args) > 1:
				text = strings.Join(args[1:], " ")
			case fromFile != "":
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read %s: %w", fromFile, err)
				}
				text = string(data)
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			if appendTo {
				n, err := s.Node(id)
				if err != nil {
					return err
				}
				text = n.Content + text
			}
			if err := s.UpdateContent(context.Background(), id, text); err != nil {
				return err
			}
			n, _ := s.Node(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%d words\n", n.WordCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "from", "f", "", "Read the content from a file")
	cmd.Flags().BoolVarP(&appendTo, "append", "a", false, "Append instead of replacing")
	return cmd
}
