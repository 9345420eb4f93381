// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Timer   TimerConfig   `toml:"timer"`
	Context ContextConfig `toml:"context"`
	Apps    AppsConfig    `toml:"apps"`
}

// TimerConfig maps timer durations in minutes.
type TimerConfig struct {
	Focus  *int `toml:"focus"`
	Break  *int `toml:"break"`
	Extend *int `toml:"extend"`
}

// ContextConfig maps the trigger-app nudge settings.
type ContextConfig struct {
	Enabled  *bool     `toml:"enabled"`
	Apps     []string  `toml:"apps"`
	Cooldown *Duration `toml:"cooldown"`
	Poll     *Duration `toml:"poll"`
}

// AppsConfig holds window-title normalisation rules.
type AppsConfig struct {
	Rules []AppRule `toml:"rule"`
}

// AppRule maps a title substring to an application name.
type AppRule struct {
	Match string `toml:"match"`
	Name  string `toml:"name"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	for i, rule := range cfg.Apps.Rules {
		if rule.Match == "" || rule.Name == "" {
			return FileConfig{}, fmt.Errorf("apps.rule[%d]: match and name are required", i)
		}
	}
	return cfg, nil
}
