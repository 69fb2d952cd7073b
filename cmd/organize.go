package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/cmd/config"
	"github.com/mattsolo1/grove-writer/pkg/assistant"
	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

// loadProvider builds the configured assistant provider. A --from file
// overrides the configuration with the static provider.
func loadProvider(a *assistant.Assistant, from string) (assistant.Provider, error) {
	cfg, err := config.AssistantConfig()
	if err != nil {
		return nil, err
	}
	if from != "" {
		cfg = assistant.Config{Provider: assistant.StaticProviderName, File: from}
	}
	return a.Provider(cfg)
}

func printReport(cmd *cobra.Command, r *assistant.Report) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d applied, %d skipped\n", r.Provider, r.Applied, r.Skipped)
	for _, e := range r.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "  error: %s\n", e)
	}
}

func NewOrganizeCmd(svc **service.Service) *cobra.Command {
	var (
		from   string
		parent string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Apply suggested folders to the files of the active book",
		Long: `Ask the configured assistant for a folder layout and move files
accordingly. Files that no longer exist are skipped.

A suggestions file for the static provider looks like:

  folders:
    - folder: Characters
      files: [<file id>, <file id>]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := context.Background()
			a := assistant.New(s, afero.NewOsFs())

			provider, err := loadProvider(a, from)
			if err != nil {
				return err
			}
			files, err := s.Files("")
			if err != nil {
				return err
			}
			suggestion, err := provider.Organize(ctx, files)
			if err != nil {
				return fmt.Errorf("%s: %w", provider.Name(), err)
			}
			if suggestion == nil || len(suggestion.Folders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No suggestions")
				return nil
			}

			for _, f := range suggestion.Folders {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d files\n", f.TargetFolderName, len(f.FileIDs))
			}
			ok, err := confirmAction(cmd, yes, fmt.Sprintf("Create %d folders and move the files?", len(suggestion.Folders)))
			if err != nil || !ok {
				return err
			}

			parentID, err := resolveParent(s, parent)
			if err != nil {
				return err
			}
			report, err := a.ApplyOrganize(ctx, provider.Name(), suggestion, parentID)
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Read suggestions from a YAML file")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Folder to create the new folders in (default: book root)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply without asking")
	return cmd
}

func NewProofreadCmd(svc **service.Service) *cobra.Command {
	var (
		from string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "proofread [file...]",
		Short: "Apply suggested corrections to files",
		Long: `Ask the configured assistant to proofread files (default: every file
of the active book) and replace their content with the corrections.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := context.Background()
			a := assistant.New(s, afero.NewOsFs())

			provider, err := loadProvider(a, from)
			if err != nil {
				return err
			}

			var files []*models.Node
			if len(args) == 0 {
				if files, err = s.Files(""); err != nil {
					return err
				}
			}
			for _, ref := range args {
				id, err := s.ResolveNode(ref)
				if err != nil {
					return err
				}
				n, err := s.Node(id)
				if err != nil {
					return err
				}
				files = append(files, n)
			}

			var suggestions []*assistant.Proofread
			for _, n := range files {
				p, err := provider.Proofread(ctx, n)
				if err != nil {
					return fmt.Errorf("%s: %w", provider.Name(), err)
				}
				if p == nil || p.Corrected == n.Content {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", n.Title)
				for _, c := range p.Changes {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", c)
				}
				suggestions = append(suggestions, p)
			}
			if len(suggestions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No suggestions")
				return nil
			}

			ok, err := confirmAction(cmd, yes, fmt.Sprintf("Apply corrections to %d files?", len(suggestions)))
			if err != nil || !ok {
				return err
			}
			printReport(cmd, a.ApplyProofread(ctx, provider.Name(), suggestions...))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Read suggestions from a YAML file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply without asking")
	return cmd
}
