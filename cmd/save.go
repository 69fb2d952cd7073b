package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/pkg/binding"
	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

var unsafeFileChars = regexp.MustCompile(`[^\w\- ]+`)

// defaultFileName derives a file name from a node title.
func defaultFileName(title string) string {
	name := strings.TrimSpace(unsafeFileChars.ReplaceAllString(title, ""))
	if name == "" {
		name = "untitled"
	}
	return strings.ReplaceAll(strings.ToLower(name), " ", "-") + ".md"
}

// cliPrompter asks on the terminal before granting file access.
func cliPrompter(cmd *cobra.Command, yes bool) binding.Prompter {
	return func(_ context.Context, name string, mode binding.Mode) (bool, error) {
		return confirmAction(cmd, yes, fmt.Sprintf("Allow gw %s access to %s?", mode, name))
	}
}

// FlagPrompter prompts like cliPrompter for the running command, skipping
// the question when that command was given --yes.
func FlagPrompter(cmd *cobra.Command) binding.Prompter {
	return func(ctx context.Context, name string, mode binding.Mode) (bool, error) {
		yes, _ := cmd.Flags().GetBool("yes")
		return cliPrompter(cmd, yes)(ctx, name, mode)
	}
}

// FilePicker chooses the target of a manual save for an unbound node: a
// file in dir named after the node's title.
func FilePicker(fs afero.Fs, dir string, prompter binding.Prompter) binding.Picker {
	return func(_ context.Context, n *models.Node) (binding.Capability, error) {
		return binding.NewFileCapability(fs, filepath.Join(dir, defaultFileName(n.Title)), prompter), nil
	}
}

func NewSaveCmd(svc **service.Service) *cobra.Command {
	var (
		target string
		yes    bool
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Save a file node to a file on disk",
		Long: `Write a file node to an external file. Markdown targets get a YAML
frontmatter header with the title, category, tags and modification time.

Access to the target is asked for once per run. With --watch the file stays
bound and is rewritten whenever it is the active file, until interrupted.

Examples:
  gw save "Chapter 1" --to chapter-1.md
  gw save "Chapter 1" --watch`,
		Args: cobra.ExactArgs(1),
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

			// Without --to an unbound node goes to the file the picker chooses.
			if target != "" {
				path := target
				if abs, err := filepath.Abs(path); err == nil {
					path = abs
				}
				if _, err := s.BindFile(id, afero.NewOsFs(), path, cliPrompter(cmd, yes)); err != nil {
					return err
				}
			}
			ctx := context.Background()
			if err := s.WriteExternal(ctx, id, binding.Manual); err != nil {
				return err
			}

			saved := defaultFileName(n.Title)
			if c := s.BindingOf(id).Capability(); c != nil {
				saved = c.Name()
				if fc, ok := c.(*binding.FileCapability); ok {
					saved = fc.Path()
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q to %s\n", n.Title, saved)

			if !watch {
				return nil
			}
			return watchActive(cmd, s, id)
		},
	}

	cmd.Flags().StringVar(&target, "to", "", "Target path (default: derived from the title)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Grant file access without asking")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep rewriting the file while it is the active file")
	return cmd
}

// watchActive makes id the active file, then reloads the stored state on
// every auto save interval so edits from other gw invocations are picked up.
func watchActive(cmd *cobra.Command, s *service.Service, id string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.SetActiveNode(ctx, id); err != nil {
		return err
	}

	interval := s.Config.AutosaveInterval
	if interval <= 0 {
		interval = binding.DefaultInterval
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching every %s, press Ctrl+C to stop\n", interval)

	s.StartAutosave(ctx)
	defer s.StopAutosave()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.AutosaveNow(context.Background())
			return nil
		case <-ticker.C:
			s.LoadSnapshot(ctx)
			FlushNotices(s)
			if s.BindingOf(id).IsNone() {
				fmt.Fprintln(cmd.ErrOrStderr(), "File was deleted, stopping")
				return nil
			}
		}
	}
}

func NewImportCmd(svc **service.Service) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import a directory of markdown and text files",
		Long: `Copy a directory tree into the active book (or under --parent).
Sub-directories become folders; .md, .markdown and .txt files become files.
Markdown frontmatter provides the title, tags and category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			parentID, err := resolveParent(s, parent)
			if err != nil {
				return err
			}
			report, err := s.ImportDirectory(context.Background(), afero.NewOsFs(), args[0], parentID, cliPrompter(cmd, false))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d files in %d folders\n", len(report.Files), len(report.Folders))
			for _, p := range report.Skipped {
				fmt.Fprintf(out, "  skipped %s\n", p)
			}
			for _, e := range report.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  error: %v\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Folder to import into (default: root of the active book)")
	return cmd
}
