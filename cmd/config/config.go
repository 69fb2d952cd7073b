package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-writer/pkg/assistant"
	"github.com/mattsolo1/grove-writer/pkg/binding"
	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/service"
	"github.com/mattsolo1/grove-writer/pkg/stats"
)

var (
	cfgFile   string
	Verbose   bool
	Ephemeral bool
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "gw")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("GW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("data_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "gw"))
	viper.SetDefault("autosave_interval", binding.DefaultInterval)
	viper.SetDefault("daily_goal", 0)
	viper.SetDefault("default_category", string(models.DefaultCategory))
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("ephemeral", false)

	// A missing config file is fine; defaults and environment apply.
	_ = viper.ReadInConfig()
}

// NewLogger builds the logger shared by every command.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.WarnLevel
	}
	if Verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// ServiceConfig reads the service settings from viper.
func ServiceConfig() (*service.Config, error) {
	category := models.Category(strings.ToLower(viper.GetString("default_category")))
	if !category.Valid() {
		return nil, fmt.Errorf("default_category %q is not a known category", category)
	}

	return &service.Config{
		DataDir:          viper.GetString("data_dir"),
		Ephemeral:        Ephemeral || viper.GetBool("ephemeral"),
		AutosaveInterval: viper.GetDuration("autosave_interval"),
		Goals:            stats.Goals{DailyWords: viper.GetInt("daily_goal")},
		DefaultCategory:  category,
	}, nil
}

func InitService(ctx context.Context, logger *logrus.Logger, options ...service.Option) (*service.Service, error) {
	config, err := ServiceConfig()
	if err != nil {
		return nil, err
	}

	options = append([]service.Option{service.WithLogger(logger)}, options...)
	svc, err := service.New(ctx, config, options...)
	if err != nil {
		return nil, err
	}

	for _, n := range svc.Notices() {
		logger.WithField("notice", true).Log(n.Level, n.Message)
	}
	return svc, nil
}

// AssistantConfig decodes the assistant section of the configuration.
func AssistantConfig() (assistant.Config, error) {
	raw := viper.GetStringMap("assistant")
	if len(raw) == 0 {
		return assistant.DecodeConfig(nil)
	}
	return assistant.DecodeConfig(raw)
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/gw/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&Ephemeral, "ephemeral", false, "Keep all state in memory for this run")
}
