package assistant

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Config holds the configuration of one assistant provider.
type Config struct {
	Provider string                 `mapstructure:"provider"`
	File     string                 `mapstructure:"file"`
	Options  map[string]interface{} `mapstructure:",remain"`
}

// DecodeConfig reads the assistant section of the configuration file. A nil
// section yields the static provider with no file.
func DecodeConfig(raw map[string]interface{}) (Config, error) {
	cfg := Config{Provider: StaticProviderName}
	if raw == nil {
		return cfg, nil
	}
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode assistant config: %w", err)
	}
	if cfg.Provider == "" {
		return Config{}, fmt.Errorf("assistant config missing 'provider' field")
	}
	return cfg, nil
}
