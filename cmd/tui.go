package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/internal/tui/browser"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

// NewTuiCmd creates the `gw tui` command.
func NewTuiCmd(svc **service.Service) *cobra.Command {
	var bookRef string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit the active book interactively",
		Long: `Launch an interactive Terminal User Interface over the active book (or --book).
Files open in $EDITOR; changes are saved when the editor exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for TTY
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("TUI mode requires an interactive terminal")
			}

			s := *svc
			if bookRef != "" {
				w, err := resolveBook(s, bookRef)
				if err != nil {
					return err
				}
				if err := s.SwitchWorkspace(cmd.Context(), w.ID); err != nil {
					return err
				}
			}

			model := browser.New(cmd.Context(), s)
			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&bookRef, "book", "b", "", "Book to open (id, id prefix or title)")
	return cmd
}
