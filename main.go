package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/cmd"
	"github.com/mattsolo1/grove-writer/cmd/config"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

var svc *service.Service

func main() {
	rootCmd := &cobra.Command{
		Use:           "gw",
		Short:         "A writing workspace for books, folders and files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cobra.OnInitialize(config.InitConfig)
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		if c.Name() == "version" {
			return nil
		}
		logger := config.NewLogger()

		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		picker := cmd.FilePicker(afero.NewOsFs(), wd, cmd.FlagPrompter(c))

		svc, err = config.InitService(c.Context(), logger, service.WithPicker(picker))
		if err != nil {
			return fmt.Errorf("failed to initialize service: %w", err)
		}
		return nil
	}
	rootCmd.PersistentPostRun = func(c *cobra.Command, args []string) {
		if svc == nil {
			return
		}
		cmd.FlushNotices(svc)
		_ = svc.Close()
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewBookCmd(&svc))
	rootCmd.AddCommand(cmd.NewNodeCmd(&svc))
	rootCmd.AddCommand(cmd.NewTreeCmd(&svc))
	rootCmd.AddCommand(cmd.NewOpenCmd(&svc))
	rootCmd.AddCommand(cmd.NewViewCmd(&svc))
	rootCmd.AddCommand(cmd.NewSearchCmd(&svc))
	rootCmd.AddCommand(cmd.NewExportCmd(&svc))
	rootCmd.AddCommand(cmd.NewStatsCmd(&svc))
	rootCmd.AddCommand(cmd.NewSaveCmd(&svc))
	rootCmd.AddCommand(cmd.NewImportCmd(&svc))
	rootCmd.AddCommand(cmd.NewOrganizeCmd(&svc))
	rootCmd.AddCommand(cmd.NewProofreadCmd(&svc))
	rootCmd.AddCommand(cmd.NewMigrateCmd(&svc))
	rootCmd.AddCommand(cmd.NewBackupCmd(&svc))
	rootCmd.AddCommand(cmd.NewDoctorCmd(&svc))
	rootCmd.AddCommand(cmd.NewTuiCmd(&svc))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		// PersistentPostRun is skipped when RunE fails.
		if svc != nil {
			cmd.FlushNotices(svc)
			_ = svc.Close()
		}
		os.Exit(1)
	}
}
