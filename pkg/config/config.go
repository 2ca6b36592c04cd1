// Package config loads application configuration from file, environment,
// and defaults via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Artifacts configuration
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`

	// Synthesis configuration
	Synthesis SynthesisConfig `mapstructure:"synthesis"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// ArtifactsConfig points at the directory of graph artifacts produced by
// the offline build pipeline.
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir"`
}

// SynthesisConfig holds the optional rewrite layer configuration.
type SynthesisConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	CacheDir       string `mapstructure:"cache_dir"`
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("SCREENLORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return config, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("artifacts.dir", "data/derived")

	viper.SetDefault("synthesis.enabled", false)
	viper.SetDefault("synthesis.model", "")
	viper.SetDefault("synthesis.api_key", "")
	viper.SetDefault("synthesis.base_url", "")
	viper.SetDefault("synthesis.timeout_seconds", 8)
	viper.SetDefault("synthesis.cache_dir", "")
}
