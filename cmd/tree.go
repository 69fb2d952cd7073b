package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/service"
	"github.com/mattsolo1/grove-writer/pkg/tree"
)

var (
	folderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	fileStyle   = lipgloss.NewStyle()
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	metaStyle   = lipgloss.NewStyle().Faint(true)
	branchStyle = lipgloss.NewStyle().Faint(true)
)

var categoryColors = map[models.Category]lipgloss.Color{
	models.CategoryIdea:      lipgloss.Color("11"),
	models.CategoryPlanning:  lipgloss.Color("13"),
	models.CategoryCharacter: lipgloss.Color("10"),
	models.CategoryChapter:   lipgloss.Color("14"),
	models.CategoryOther:     lipgloss.Color("8"),
}

func NewTreeCmd(svc **service.Service) *cobra.Command {
	var (
		bookRef   string
		showIDs   bool
		expandAll bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the folders and files of a book",
		Long: `Show the tree of the active book (or --book). Closed folders are
collapsed unless --all is given. The active file is highlighted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			var bookID string
			if bookRef != "" {
				w, err := resolveBook(s, bookRef)
				if err != nil {
					return err
				}
				bookID = w.ID
			}
			root, err := s.Tree(bookID)
			if err != nil {
				return err
			}
			renderTree(cmd.OutOrStdout(), root, treeOptions{
				active:    s.Session().ActiveNodeID,
				showIDs:   showIDs,
				expandAll: expandAll,
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&bookRef, "book", "b", "", "Book to show (default: active)")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show node ids")
	cmd.Flags().BoolVarP(&expandAll, "all", "a", false, "Expand closed folders")
	return cmd
}

type treeOptions struct {
	active    string
	showIDs   bool
	expandAll bool
}

func renderTree(w io.Writer, root *tree.Item, opts treeOptions) {
	if root == nil {
		return
	}
	fmt.Fprintln(w, itemLabel(root, opts))
	renderChildren(w, root, "", opts)
}

func renderChildren(w io.Writer, it *tree.Item, prefix string, opts treeOptions) {
	if !it.IsOpen && !opts.expandAll {
		return
	}
	for i, child := range it.Children {
		last := i == len(it.Children)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		fmt.Fprintln(w, branchStyle.Render(prefix+branch)+itemLabel(child, opts))
		if child.IsDir() {
			renderChildren(w, child, prefix+next, opts)
		}
	}
}

func itemLabel(it *tree.Item, opts treeOptions) string {
	var sb strings.Builder
	switch {
	case it.IsDir():
		marker := "▾ "
		if !it.IsOpen && !opts.expandAll {
			marker = "▸ "
		}
		sb.WriteString(folderStyle.Render(marker + it.Title))
	case it.ID == opts.active:
		sb.WriteString(activeStyle.Render("● " + it.Title))
	default:
		sb.WriteString(fileStyle.Render(it.Title))
	}

	var meta []string
	if !it.IsDir() {
		style := lipgloss.NewStyle().Foreground(categoryColors[it.Category])
		meta = append(meta, style.Render(string(it.Category)))
		if len(it.Tags) > 0 {
			meta = append(meta, "#"+strings.Join(it.Tags, " #"))
		}
	}
	meta = append(meta, fmt.Sprintf("%d words", it.WordCount))
	if opts.showIDs {
		meta = append(meta, it.ID)
	}
	sb.WriteString(" " + metaStyle.Render("("+strings.Join(meta, ", ")+")"))
	return sb.String()
}
