package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

func NewOpenCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "open [file]",
		Short: "Make a file the active file, or show the active file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			if len(args) == 0 {
				id := s.Session().ActiveNodeID
				if id == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No active file")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(s.Path(id), " / "))
				return nil
			}
			id, err := s.ResolveNode(args[0])
			if err != nil {
				return err
			}
			return s.SetActiveNode(context.Background(), id)
		},
	}
}

func NewViewCmd(svc **service.Service) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "view [editor|preview|split|dark|focus|sidebar]",
		Short: "Show or change the view settings",
		Long: `Without arguments, print the session. A layout name selects the editor
layout; dark, focus and sidebar toggle the corresponding setting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := context.Background()

			if len(args) == 1 {
				switch arg := strings.ToLower(args[0]); arg {
				case "dark":
					s.ToggleDarkMode(ctx)
				case "focus":
					s.ToggleFocusMode(ctx)
				case "sidebar":
					s.ToggleSidebar(ctx)
				default:
					if err := s.SetViewMode(ctx, models.ViewMode(arg)); err != nil {
						return err
					}
				}
			}

			sess := s.Session()
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), sess)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "layout:  %s\n", sess.ViewMode)
			fmt.Fprintf(out, "dark:    %s\n", onOff(sess.DarkMode))
			fmt.Fprintf(out, "focus:   %s\n", onOff(sess.FocusMode))
			fmt.Fprintf(out, "sidebar: %s\n", onOff(sess.SidebarVisible))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
