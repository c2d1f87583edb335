// Package config loads flakedit's settings from its config file, the
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config defines the settings the CLI runs with.
type Config struct {
	// APIAddr is the base URL of the FlakeHub API used to resolve
	// org/project references.
	APIAddr string `mapstructure:"api_addr"`

	// FlakePath is the manifest file commands operate on when no
	// --flake-path flag is given.
	FlakePath string `mapstructure:"flake_path"`

	// InsertionLocation controls where new inputs land relative to the
	// existing ones: "top" or "bottom".
	InsertionLocation string `mapstructure:"insertion_location"`

	// LogFile, when set, appends log lines to this file (relative to the
	// working directory) instead of stderr.
	LogFile string `mapstructure:"log_file"`
}

// Load reads configuration from cfgFile when given, otherwise from
// flakedit.toml in the user's config directory or the working directory.
// A missing config file is fine; defaults and FLAKEDIT_* environment
// variables still apply.
func Load(cfgFile string) (*Config, error) {
	var config Config

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("flakedit")
		viper.SetConfigType("toml")
		if userCfg, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(userCfg, "flakedit"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetDefault("api_addr", "https://api.flakehub.com")
	viper.SetDefault("flake_path", "flake.nix")
	viper.SetDefault("insertion_location", "bottom")

	viper.SetEnvPrefix("flakedit")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return &config, fmt.Errorf("error reading config: %w", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return &config, err
	}

	return &config, nil
}
