package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/pkg/service"
)

var goalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)

func NewStatsCmd(svc **service.Service) *cobra.Command {
	var (
		days       int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show writing statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary := (*svc).Stats(days)
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), summary)
			}

			out := cmd.OutOrStdout()
			today := fmt.Sprintf("%d words", summary.Today.WordsWritten)
			if summary.DailyGoal > 0 {
				today += fmt.Sprintf(" of %d", summary.DailyGoal)
				if summary.GoalMet {
					today += " " + goalStyle.Render("goal met")
				}
			}
			fmt.Fprintf(out, "Today:          %s, %d minutes\n", today, summary.Today.MinutesActive)
			fmt.Fprintf(out, "Current streak: %d days\n", summary.CurrentStreak)
			fmt.Fprintf(out, "Longest streak: %d days\n", summary.LongestStreak)
			fmt.Fprintf(out, "All time:       %d words, %d minutes\n", summary.TotalWords, summary.TotalMinutes)

			if len(summary.Recent) == 0 {
				return nil
			}
			max := 0
			for _, e := range summary.Recent {
				if e.WordsWritten > max {
					max = e.WordsWritten
				}
			}
			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, e := range summary.Recent {
				bar := ""
				if max > 0 {
					bar = strings.Repeat("█", e.WordsWritten*30/max)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Date, e.WordsWritten, bar)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Number of recent days to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
