// Package screenlore implements the CLI.
package screenlore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	screenlore "github.com/screenlore/go-screenlore"
	"github.com/screenlore/go-screenlore/pkg/cache"
	"github.com/screenlore/go-screenlore/pkg/config"
	"github.com/screenlore/go-screenlore/pkg/llm"
	"github.com/screenlore/go-screenlore/pkg/logger"
	"github.com/screenlore/go-screenlore/pkg/store"
	"github.com/screenlore/go-screenlore/pkg/synthesis"
)

var (
	cfgFile      string
	artifactsDir string
)

var rootCmd = &cobra.Command{
	Use:   "screenlore",
	Short: "Question answering over screenplay-derived graph artifacts",
	Long: `Screenlore answers natural-language questions about a narrative corpus
using two pre-built graph stores: a relationship knowledge graph and a
narrative trace of events and state changes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; absence is not an error.
		_ = godotenv.Load()
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&artifactsDir, "artifacts", "", "Artifact directory (overrides config)")
}

// loadConfig resolves configuration plus CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if artifactsDir != "" {
		cfg.Artifacts.Dir = artifactsDir
	}
	return cfg, nil
}

// buildService wires the query service from config.
func buildService(cfg *config.Config, log *slog.Logger) (*screenlore.Client, func()) {
	artifacts := store.New(cfg.Artifacts.Dir)

	// A rewriter is always wired; with a nil client it only annotates that
	// the rewrite layer is off.
	var client llm.Client
	var responseCache cache.Cache
	cleanup := func() {}
	if cfg.Synthesis.Enabled && cfg.Synthesis.APIKey != "" {
		client = llm.NewOpenAIClient(cfg.Synthesis.APIKey, cfg.Synthesis.Model, cfg.Synthesis.BaseURL)
		if cfg.Synthesis.CacheDir != "" {
			if c, err := cache.NewBadgerCache(cfg.Synthesis.CacheDir); err != nil {
				log.Warn("synthesis cache disabled", "error", err)
			} else {
				responseCache = c
				cleanup = func() { _ = c.Close() }
			}
		}
	}
	timeout := time.Duration(cfg.Synthesis.TimeoutSeconds) * time.Second
	rewriter := synthesis.New(client, timeout, responseCache, log)

	return screenlore.New(artifacts, rewriter, log), cleanup
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Log.Level)
}
